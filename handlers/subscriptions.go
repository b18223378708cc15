package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sola-donation-api/database"
	"sola-donation-api/models"
	"sola-donation-api/services/payment"
	"sola-donation-api/utils"
)

type SubscriptionHandler struct {
	db             *database.Connection
	paymentService *payment.Service
}

func NewSubscriptionHandler(db *database.Connection, ps *payment.Service) *SubscriptionHandler {
	return &SubscriptionHandler{
		db:             db,
		paymentService: ps,
	}
}

// ListSubscriptions returns all recorded recurring donations.
func (h *SubscriptionHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.db.ListSubscriptions(r.Context())
	if err != nil {
		log.Printf("Error listing subscriptions: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   subs,
	})
}

// GetSubscription returns one recorded subscription by id.
func (h *SubscriptionHandler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid subscription id")
		return
	}

	sub, err := h.db.GetSubscription(r.Context(), id)
	if err != nil {
		log.Printf("Error getting subscription %d: %v", id, err)
		utils.SendErrorResponse(w, http.StatusNotFound, "Subscription not found")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   sub,
	})
}

// ChargeSubscription charges a stored token once, outside its schedule.
func (h *SubscriptionHandler) ChargeSubscription(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid subscription id")
		return
	}

	sub, err := h.db.GetSubscription(r.Context(), id)
	if err != nil {
		log.Printf("[RequestID: %s] Error getting subscription %d: %v", requestID, id, err)
		utils.SendErrorResponse(w, http.StatusNotFound, "Subscription not found")
		return
	}

	log.Printf("[RequestID: %s] Manual charge for subscription %d (schedule %s)",
		requestID, id, sub.ScheduleID)

	result := h.paymentService.ChargeSavedToken(r.Context(), sub)
	if !result.Approved() {
		log.Printf("[RequestID: %s] Manual charge failed: outcome=%s", requestID, result.Outcome)
		utils.SendErrorResponse(w, statusForOutcome(result.Outcome), result.Message)
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: result.Message,
		Data:    result,
	})
}

// ListDonations returns recorded one-time donations.
func (h *SubscriptionHandler) ListDonations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	records, err := h.db.ListDonations(r.Context(), limit)
	if err != nil {
		log.Printf("Error listing donations: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   records,
	})
}
