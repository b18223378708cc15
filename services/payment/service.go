package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"sola-donation-api/models"
	"sola-donation-api/services/payment/cardknox"
	"sola-donation-api/utils"
)

const missingKeyMessage = "API key not configured. Please check plugin settings."

// Service runs the one-time and recurring donation flows against the gateway.
// Each invocation is independent; the only shared state is the injected
// collaborators.
type Service struct {
	gateway  Gateway
	settings SettingsProvider
	store    SubscriptionStore
	now      func() time.Time
}

func NewService(gateway Gateway, settings SettingsProvider, store SubscriptionStore) *Service {
	return &Service{
		gateway:  gateway,
		settings: settings,
		store:    store,
		now:      time.Now,
	}
}

// ChargeOnce submits a single cc:sale for a one-time donation.
func (s *Service) ChargeOnce(ctx context.Context, req *models.DonationRequest) *models.GatewayResult {
	creds, result := s.activeCredentials(ctx)
	if result != nil {
		return result
	}

	saleReq := &cardknox.SaleRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		CardNumber:  req.CardNumber,
		Expiry:      req.Expiry,
		CVV:         req.CVV,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Invoice:     utils.GenerateInvoiceID("DONATION"),
		Description: "One-time donation",
	}

	return s.gateway.Sale(ctx, creds, saleReq)
}

// SetupRecurring runs the recurring flow: tokenize the card, compute the
// schedule start date, create the remote schedule, then persist the
// subscription record. The flow is terminal on the first failure and never
// calls the schedule API when tokenization fails. A token left behind at the
// gateway by a later failure is not voided here; the gateway owns it and it
// is reusable on retry.
func (s *Service) SetupRecurring(ctx context.Context, req *models.DonationRequest) *models.GatewayResult {
	creds, result := s.activeCredentials(ctx)
	if result != nil {
		return result
	}

	tokenRes := s.gateway.SaveCard(ctx, creds, &cardknox.SaveCardRequest{
		CardNumber: req.CardNumber,
		Expiry:     req.Expiry,
		CVV:        req.CVV,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if !tokenRes.Approved() || tokenRes.Token == "" {
		return tokenRes
	}

	// The start date controls when the remote scheduler fires the first
	// charge. It is independent of the ongoing day-of-month rule.
	startDate := utils.FirstOfNextMonth(s.now())
	if req.ChargeNow {
		startDate = s.now()
	}

	schedReq := &cardknox.ScheduleRequest{
		Token:        tokenRes.Token,
		Expiry:       req.Expiry,
		Amount:       req.Amount,
		Currency:     req.Currency,
		StartDate:    utils.FormatDate(startDate),
		ChargeDay:    req.ChargeDay,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		ScheduleName: scheduleName(req),
		Description:  "Recurring donation",
		CustReceipt:  req.Email != "",
	}
	if req.ChargeNow {
		// The CVV rides along only when the schedule's initial transaction
		// runs immediately.
		schedReq.CVV = req.CVV
	}

	schedRes := s.gateway.CreateSchedule(ctx, creds, schedReq)
	if !schedRes.Approved() {
		return schedRes
	}

	sub := &models.RecurringSubscription{
		Token:           tokenRes.Token,
		Amount:          utils.Round(req.Amount),
		Currency:        req.Currency,
		ChargeDay:       req.ChargeDay,
		DonorEmail:      req.Email,
		DonorName:       req.FirstName + " " + req.LastName,
		ScheduleID:      schedRes.ScheduleID,
		CustomerID:      schedRes.CustomerID,
		PaymentMethodID: schedRes.PaymentMethodID,
		StartDate:       schedRes.StartDate,
		ChargedNow:      req.ChargeNow,
		Status:          "active",
		CreatedAt:       s.now(),
	}

	id, err := s.store.SaveSubscription(ctx, sub)
	if err != nil {
		// The schedule already exists remotely; surface the failure with
		// enough reference data to reconcile by hand.
		log.Printf("Failed to save subscription record for schedule %s: %v", schedRes.ScheduleID, err)
		return &models.GatewayResult{
			Outcome:    models.OutcomeError,
			Message:    fmt.Sprintf("Recurring donation was created (schedule %s) but could not be recorded. Please contact support.", schedRes.ScheduleID),
			ScheduleID: schedRes.ScheduleID,
			CustomerID: schedRes.CustomerID,
			StartDate:  schedRes.StartDate,
		}
	}
	log.Printf("Saved recurring subscription %d for schedule %s", id, schedRes.ScheduleID)

	message := fmt.Sprintf("Recurring donation setup successful! First charge on %s, then on day %d of each month.",
		schedRes.StartDate, req.ChargeDay)
	if req.ChargeNow {
		message = fmt.Sprintf("Recurring donation setup successful! Your first payment was processed now; you will be charged on day %d of each month.",
			req.ChargeDay)
	}

	return &models.GatewayResult{
		Outcome:         models.OutcomeApproved,
		Message:         message,
		ScheduleID:      schedRes.ScheduleID,
		CustomerID:      schedRes.CustomerID,
		PaymentMethodID: schedRes.PaymentMethodID,
		StartDate:       schedRes.StartDate,
	}
}

// ChargeSavedToken charges an existing subscription's token once, outside its
// schedule. Used from the admin surface.
func (s *Service) ChargeSavedToken(ctx context.Context, sub *models.RecurringSubscription) *models.GatewayResult {
	creds, result := s.activeCredentials(ctx)
	if result != nil {
		return result
	}

	return s.gateway.ChargeToken(ctx, creds, &cardknox.TokenSaleRequest{
		Token:       sub.Token,
		Amount:      sub.Amount,
		Currency:    sub.Currency,
		Invoice:     utils.GenerateInvoiceID("DONATION-RECURRING"),
		Description: "Recurring donation - manual charge",
	})
}

// activeCredentials loads credentials and fails fast, before any network
// call, when the active key is missing.
func (s *Service) activeCredentials(ctx context.Context) (models.GatewayCredentials, *models.GatewayResult) {
	creds, err := s.settings.GetCredentials(ctx)
	if err != nil {
		log.Printf("Error loading gateway credentials: %v", err)
		return creds, &models.GatewayResult{
			Outcome: models.OutcomeConfigError,
			Message: missingKeyMessage,
		}
	}
	if creds.ActiveKey() == "" {
		log.Printf("Rejecting payment: no active API key (sandbox=%v)", creds.SandboxMode)
		return creds, &models.GatewayResult{
			Outcome: models.OutcomeConfigError,
			Message: missingKeyMessage,
		}
	}
	return creds, nil
}

func scheduleName(req *models.DonationRequest) string {
	name := fmt.Sprintf("Recurring Donation - %s %s", req.FirstName, req.LastName)
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

// ValidateDonation checks a request against the form configuration before
// anything is sent to the gateway.
func ValidateDonation(req *models.DonationRequest, cfg models.FormConfig) error {
	if req.DonationType != models.DonationOneTime && req.DonationType != models.DonationMonthly {
		return fmt.Errorf("invalid donation type %q", req.DonationType)
	}
	if req.Amount <= 0 {
		return errors.New("donation amount must be greater than zero")
	}
	if !cfg.CurrencyEnabled(req.Currency) {
		return fmt.Errorf("currency %q is not enabled", req.Currency)
	}

	if len(req.CardNumber) < 13 || len(req.CardNumber) > 19 || !validateLuhn(req.CardNumber) {
		return errors.New("invalid card number")
	}
	if len(req.CVV) < 3 || len(req.CVV) > 4 {
		return errors.New("invalid CVV")
	}
	if !validateExpiry(req.Expiry, time.Now()) {
		return errors.New("invalid or expired card expiration date")
	}

	for field, value := range map[string]string{
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"email":     req.Email,
		"phone":     req.Phone,
		"address":   req.Address,
	} {
		if cfg.FieldRequired(field) && value == "" {
			return fmt.Errorf("field %q is required", field)
		}
	}

	if req.DonationType == models.DonationMonthly {
		if req.ChargeDay < 1 || req.ChargeDay > 31 {
			return errors.New("charge day must be between 1 and 31")
		}
	}

	return nil
}

func validateLuhn(cardNumber string) bool {
	sum := 0
	isEven := len(cardNumber)%2 == 0

	for i, r := range cardNumber {
		digit := int(r - '0')
		if digit < 0 || digit > 9 {
			return false
		}
		if isEven == (i%2 == 0) {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}

	return sum%10 == 0
}

// validateExpiry expects the MMYY form the gateway uses and accepts any date
// through the end of the expiry month.
func validateExpiry(expiry string, now time.Time) bool {
	expiryTime, err := time.Parse("0106", expiry)
	if err != nil {
		return false
	}

	endOfMonth := time.Date(expiryTime.Year(), expiryTime.Month()+1, 0, 23, 59, 59, 0, time.UTC)
	return endOfMonth.After(now)
}
