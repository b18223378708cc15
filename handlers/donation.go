package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"sola-donation-api/database"
	"sola-donation-api/models"
	"sola-donation-api/queue"
	"sola-donation-api/services/payment"
	"sola-donation-api/utils"
)

const (
	donationSessionName = "sola_donation"
	resubmitWindow      = 10 * time.Second
)

type DonationHandler struct {
	db             *database.Connection
	paymentService *payment.Service
	queue          *queue.Queue
	sessionStore   *sessions.CookieStore
}

func NewDonationHandler(db *database.Connection, ps *payment.Service, q *queue.Queue, sessionSecret string) (*DonationHandler, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if ps == nil {
		return nil, fmt.Errorf("payment service is required")
	}
	if q == nil {
		return nil, fmt.Errorf("queue is required")
	}

	return &DonationHandler{
		db:             db,
		paymentService: ps,
		queue:          q,
		sessionStore:   sessions.NewCookieStore([]byte(sessionSecret)),
	}, nil
}

// ProcessDonation handles a donation form submission, one-time or monthly.
func (h *DonationHandler) ProcessDonation(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	log.Printf("[RequestID: %s] Starting donation processing", requestID)

	var req models.DonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[RequestID: %s] Invalid request body: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Browser-level double-submit guard; refreshing the form right after a
	// submission must not charge the card twice.
	session, _ := h.sessionStore.Get(r, donationSessionName)
	if last, ok := session.Values["last_submit"].(int64); ok {
		if time.Since(time.Unix(last, 0)) < resubmitWindow {
			log.Printf("[RequestID: %s] Duplicate submission blocked", requestID)
			utils.SendErrorResponse(w, http.StatusTooManyRequests,
				"Your donation is already being processed. Please wait a moment.")
			return
		}
	}
	session.Values["last_submit"] = time.Now().Unix()
	if err := session.Save(r, w); err != nil {
		log.Printf("[RequestID: %s] Warning: failed to save session: %v", requestID, err)
	}

	cfg, err := h.db.GetFormConfig(r.Context())
	if err != nil {
		log.Printf("[RequestID: %s] Error loading form config: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := payment.ValidateDonation(&req, cfg); err != nil {
		log.Printf("[RequestID: %s] Validation failed: %v", requestID, err)
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("[RequestID: %s] Processing %s donation: amount=%s currency=%s card=%s",
		requestID, req.DonationType, utils.FormatAmount(req.Amount), req.Currency,
		utils.MaskCardNumber(req.CardNumber))

	var result *models.GatewayResult
	if req.DonationType == models.DonationMonthly {
		result = h.paymentService.SetupRecurring(r.Context(), &req)
	} else {
		result = h.paymentService.ChargeOnce(r.Context(), &req)
	}

	if !result.Approved() {
		log.Printf("[RequestID: %s] Donation not approved: outcome=%s code=%q",
			requestID, result.Outcome, result.ErrorCode)
		utils.SendErrorResponse(w, statusForOutcome(result.Outcome), result.Message)
		return
	}

	h.enqueueFollowups(requestID, &req, result)

	log.Printf("[RequestID: %s] Donation approved: ref=%s schedule=%s",
		requestID, result.RefNum, result.ScheduleID)
	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: result.Message,
		Data:    result,
	})
}

// GetFormConfig returns the settings the front-end form renders from.
func (h *DonationHandler) GetFormConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.db.GetFormConfig(r.Context())
	if err != nil {
		log.Printf("Error loading form config: %v", err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   cfg,
	})
}

// enqueueFollowups queues the receipt email and, for one-time donations, the
// donation record. Both are best-effort; a queue outage never fails a
// donation that the gateway already approved.
func (h *DonationHandler) enqueueFollowups(requestID string, req *models.DonationRequest, result *models.GatewayResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receipt := map[string]interface{}{
		"email":      req.Email,
		"donor_name": req.FirstName + " " + req.LastName,
		"amount":     utils.FormatAmount(req.Amount),
		"currency":   req.Currency,
		"ref_num":    result.RefNum,
	}

	if req.DonationType == models.DonationMonthly {
		receipt["kind"] = "recurring"
		receipt["charge_day"] = req.ChargeDay
		receipt["start_date"] = result.StartDate
	} else {
		record := map[string]interface{}{
			"ref_num":      result.RefNum,
			"invoice":      result.Invoice,
			"amount_value": utils.Round(req.Amount),
			"currency":     req.Currency,
			"email":        req.Email,
			"donor_name":   req.FirstName + " " + req.LastName,
			"masked_card":  result.MaskedCard,
			"card_type":    result.CardType,
		}
		if err := h.queue.Enqueue(ctx, queue.JobTypeRecordDonation, record); err != nil {
			log.Printf("[RequestID: %s] Warning: failed to enqueue donation record: %v", requestID, err)
		}
	}

	if err := h.queue.Enqueue(ctx, queue.JobTypeSendReceipt, receipt); err != nil {
		log.Printf("[RequestID: %s] Warning: failed to enqueue receipt: %v", requestID, err)
	}
}

// statusForOutcome maps a gateway outcome to the HTTP status the form
// consumer sees. Every outcome is handled explicitly.
func statusForOutcome(outcome models.Outcome) int {
	switch outcome {
	case models.OutcomeConfigError:
		return http.StatusServiceUnavailable
	case models.OutcomeTransportError:
		return http.StatusBadGateway
	case models.OutcomeDeclined:
		return http.StatusPaymentRequired
	case models.OutcomeError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
