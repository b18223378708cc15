package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"sola-donation-api/models"
	"sola-donation-api/services/auth"
	"sola-donation-api/utils"
)

type AuthHandler struct {
	jwtService *auth.JWTService
}

func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
	}
}

// Login authenticates the admin account and returns a JWT.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Error decoding login request: %v", err)
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	log.Printf("Login attempt for user: %s", req.Username)

	authResponse, err := h.jwtService.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Printf("Authentication failed for user %s: %v", req.Username, err)

		if err == auth.ErrInvalidCredentials {
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
		return
	}

	log.Printf("Login successful for user: %s", req.Username)

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Authentication successful",
		Data:    authResponse,
	})
}
