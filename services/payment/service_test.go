package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sola-donation-api/models"
	"sola-donation-api/services/payment/cardknox"
)

// fakeGateway records every call and plays back canned results per operation.
type fakeGateway struct {
	saleResult     *models.GatewayResult
	saveResult     *models.GatewayResult
	tokenResult    *models.GatewayResult
	scheduleResult *models.GatewayResult

	saleCalls     []*cardknox.SaleRequest
	saveCalls     []*cardknox.SaveCardRequest
	tokenCalls    []*cardknox.TokenSaleRequest
	scheduleCalls []*cardknox.ScheduleRequest
}

func (f *fakeGateway) Sale(ctx context.Context, creds models.GatewayCredentials, req *cardknox.SaleRequest) *models.GatewayResult {
	f.saleCalls = append(f.saleCalls, req)
	return f.saleResult
}

func (f *fakeGateway) SaveCard(ctx context.Context, creds models.GatewayCredentials, req *cardknox.SaveCardRequest) *models.GatewayResult {
	f.saveCalls = append(f.saveCalls, req)
	return f.saveResult
}

func (f *fakeGateway) ChargeToken(ctx context.Context, creds models.GatewayCredentials, req *cardknox.TokenSaleRequest) *models.GatewayResult {
	f.tokenCalls = append(f.tokenCalls, req)
	return f.tokenResult
}

func (f *fakeGateway) CreateSchedule(ctx context.Context, creds models.GatewayCredentials, req *cardknox.ScheduleRequest) *models.GatewayResult {
	f.scheduleCalls = append(f.scheduleCalls, req)
	return f.scheduleResult
}

type fakeSettings struct {
	creds models.GatewayCredentials
	err   error
}

func (f *fakeSettings) GetCredentials(ctx context.Context) (models.GatewayCredentials, error) {
	return f.creds, f.err
}

func (f *fakeSettings) GetFormConfig(ctx context.Context) (models.FormConfig, error) {
	return models.FormConfig{}, nil
}

type fakeStore struct {
	saved []*models.RecurringSubscription
	err   error
}

func (f *fakeStore) SaveSubscription(ctx context.Context, sub *models.RecurringSubscription) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.saved = append(f.saved, sub)
	return int64(len(f.saved)), nil
}

func sandboxSettings() *fakeSettings {
	return &fakeSettings{creds: models.GatewayCredentials{
		SandboxMode: true,
		SandboxKey:  "sandbox_key",
	}}
}

func approvedSave(token string) *models.GatewayResult {
	return &models.GatewayResult{Outcome: models.OutcomeApproved, Token: token}
}

func approvedSchedule() *models.GatewayResult {
	return &models.GatewayResult{
		Outcome:         models.OutcomeApproved,
		ScheduleID:      "sch_1",
		CustomerID:      "cus_1",
		PaymentMethodID: "pm_1",
		StartDate:       "2026-09-01",
	}
}

func monthlyRequest() *models.DonationRequest {
	return &models.DonationRequest{
		DonationType: models.DonationMonthly,
		Amount:       25,
		Currency:     "USD",
		CardNumber:   "4111111111111111",
		Expiry:       "1299",
		CVV:          "123",
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        "jane@example.com",
		ChargeDay:    15,
	}
}

func newTestService(gw *fakeGateway, settings *fakeSettings, store *fakeStore, now time.Time) *Service {
	svc := NewService(gw, settings, store)
	svc.now = func() time.Time { return now }
	return svc
}

func TestChargeOnceMissingKey(t *testing.T) {
	gw := &fakeGateway{}
	settings := &fakeSettings{creds: models.GatewayCredentials{SandboxMode: true}}
	svc := newTestService(gw, settings, &fakeStore{}, time.Now())

	result := svc.ChargeOnce(context.Background(), &models.DonationRequest{
		DonationType: models.DonationOneTime,
		Amount:       10,
		Currency:     "USD",
	})

	if result.Outcome != models.OutcomeConfigError {
		t.Fatalf("outcome = %v, want config error", result.Outcome)
	}
	if len(gw.saleCalls) != 0 {
		t.Error("no gateway call may happen without an active key")
	}
}

func TestChargeOnceInvoicePrefix(t *testing.T) {
	gw := &fakeGateway{saleResult: &models.GatewayResult{Outcome: models.OutcomeApproved}}
	svc := newTestService(gw, sandboxSettings(), &fakeStore{}, time.Now())

	svc.ChargeOnce(context.Background(), &models.DonationRequest{
		DonationType: models.DonationOneTime,
		Amount:       10,
		Currency:     "USD",
	})

	if len(gw.saleCalls) != 1 {
		t.Fatalf("sale calls = %d, want 1", len(gw.saleCalls))
	}
	invoice := gw.saleCalls[0].Invoice
	if !strings.HasPrefix(invoice, "DONATION-") {
		t.Errorf("invoice %q missing DONATION- prefix", invoice)
	}
	if parts := strings.Split(invoice, "-"); len(parts) != 3 {
		t.Errorf("invoice %q not in prefix-timestamp-random form", invoice)
	}
}

func TestSetupRecurringDeferredStartDate(t *testing.T) {
	gw := &fakeGateway{saveResult: approvedSave("tok_1"), scheduleResult: approvedSchedule()}
	store := &fakeStore{}
	// Mid-month submission; the first charge defers to the 1st of next month.
	svc := newTestService(gw, sandboxSettings(), store, time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

	req := monthlyRequest()
	req.ChargeNow = false

	result := svc.SetupRecurring(context.Background(), req)
	if result.Outcome != models.OutcomeApproved {
		t.Fatalf("outcome = %v, want approved (message: %s)", result.Outcome, result.Message)
	}

	if len(gw.scheduleCalls) != 1 {
		t.Fatalf("schedule calls = %d, want 1", len(gw.scheduleCalls))
	}
	sched := gw.scheduleCalls[0]
	if sched.StartDate != "2026-09-01" {
		t.Errorf("StartDate = %q, want first of next month", sched.StartDate)
	}
	if sched.CVV != "" {
		t.Error("CVV must not be sent when the first charge is deferred")
	}
	if sched.ChargeDay != 15 {
		t.Errorf("ChargeDay = %d, want 15", sched.ChargeDay)
	}
	if !sched.CustReceipt {
		t.Error("CustReceipt should be set when the donor gave an email")
	}
}

func TestSetupRecurringDeferredStartDateLateMonth(t *testing.T) {
	gw := &fakeGateway{saveResult: approvedSave("tok_1"), scheduleResult: approvedSchedule()}
	// December 31st rolls into January 1st of the next year.
	svc := newTestService(gw, sandboxSettings(), &fakeStore{}, time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC))

	req := monthlyRequest()
	result := svc.SetupRecurring(context.Background(), req)
	if result.Outcome != models.OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", result.Outcome)
	}
	if got := gw.scheduleCalls[0].StartDate; got != "2027-01-01" {
		t.Errorf("StartDate = %q, want 2027-01-01", got)
	}
}

func TestSetupRecurringImmediateCharge(t *testing.T) {
	gw := &fakeGateway{saveResult: approvedSave("tok_1"), scheduleResult: approvedSchedule()}
	store := &fakeStore{}
	svc := newTestService(gw, sandboxSettings(), store, time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))

	req := monthlyRequest()
	req.ChargeNow = true

	result := svc.SetupRecurring(context.Background(), req)
	if result.Outcome != models.OutcomeApproved {
		t.Fatalf("outcome = %v, want approved (message: %s)", result.Outcome, result.Message)
	}

	sched := gw.scheduleCalls[0]
	if sched.StartDate != "2026-08-15" {
		t.Errorf("StartDate = %q, want submission day", sched.StartDate)
	}
	if sched.CVV != "123" {
		t.Errorf("CVV = %q, want it present for an immediate first charge", sched.CVV)
	}
}

func TestSetupRecurringTokenizeFailureStopsFlow(t *testing.T) {
	declined := &models.GatewayResult{
		Outcome: models.OutcomeDeclined,
		Message: "Card declined",
	}
	gw := &fakeGateway{saveResult: declined}
	store := &fakeStore{}
	svc := newTestService(gw, sandboxSettings(), store, time.Now())

	result := svc.SetupRecurring(context.Background(), monthlyRequest())

	if result != declined {
		t.Errorf("result = %+v, want the tokenization result passed through", result)
	}
	if len(gw.scheduleCalls) != 0 {
		t.Error("schedule API must not be called after a tokenization failure")
	}
	if len(store.saved) != 0 {
		t.Error("nothing may be persisted after a tokenization failure")
	}
}

func TestSetupRecurringTokenlessApprovalStopsFlow(t *testing.T) {
	gw := &fakeGateway{saveResult: &models.GatewayResult{Outcome: models.OutcomeApproved}}
	svc := newTestService(gw, sandboxSettings(), &fakeStore{}, time.Now())

	result := svc.SetupRecurring(context.Background(), monthlyRequest())

	if result.Token != "" {
		t.Errorf("Token = %q, want empty", result.Token)
	}
	if len(gw.scheduleCalls) != 0 {
		t.Error("an approved but tokenless save must not reach the schedule API")
	}
}

func TestSetupRecurringScheduleFailureNotPersisted(t *testing.T) {
	gw := &fakeGateway{
		saveResult: approvedSave("tok_1"),
		scheduleResult: &models.GatewayResult{
			Outcome: models.OutcomeError,
			Message: "Invalid token",
		},
	}
	store := &fakeStore{}
	svc := newTestService(gw, sandboxSettings(), store, time.Now())

	result := svc.SetupRecurring(context.Background(), monthlyRequest())

	if result.Outcome != models.OutcomeError {
		t.Fatalf("outcome = %v, want error", result.Outcome)
	}
	if len(store.saved) != 0 {
		t.Error("a failed schedule must not be persisted")
	}
}

func TestSetupRecurringPersistsSubscription(t *testing.T) {
	gw := &fakeGateway{saveResult: approvedSave("tok_1"), scheduleResult: approvedSchedule()}
	store := &fakeStore{}
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(gw, sandboxSettings(), store, now)

	result := svc.SetupRecurring(context.Background(), monthlyRequest())
	if result.Outcome != models.OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", result.Outcome)
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved = %d, want 1", len(store.saved))
	}
	sub := store.saved[0]
	if sub.Token != "tok_1" {
		t.Errorf("Token = %q", sub.Token)
	}
	if sub.ScheduleID != "sch_1" || sub.CustomerID != "cus_1" || sub.PaymentMethodID != "pm_1" {
		t.Errorf("ids = %q/%q/%q", sub.ScheduleID, sub.CustomerID, sub.PaymentMethodID)
	}
	if sub.Amount != 25 || sub.Currency != "USD" || sub.ChargeDay != 15 {
		t.Errorf("amount/currency/day = %v/%q/%d", sub.Amount, sub.Currency, sub.ChargeDay)
	}
	if sub.DonorName != "Jane Doe" {
		t.Errorf("DonorName = %q", sub.DonorName)
	}
	if sub.Status != "active" {
		t.Errorf("Status = %q", sub.Status)
	}
}

func TestSetupRecurringPersistFailureKeepsScheduleReference(t *testing.T) {
	gw := &fakeGateway{saveResult: approvedSave("tok_1"), scheduleResult: approvedSchedule()}
	store := &fakeStore{err: errors.New("connection lost")}
	svc := newTestService(gw, sandboxSettings(), store, time.Now())

	result := svc.SetupRecurring(context.Background(), monthlyRequest())

	if result.Outcome != models.OutcomeError {
		t.Fatalf("outcome = %v, want error", result.Outcome)
	}
	if result.ScheduleID != "sch_1" {
		t.Errorf("ScheduleID = %q, want the remote schedule id for reconciliation", result.ScheduleID)
	}
	if !strings.Contains(result.Message, "sch_1") {
		t.Errorf("Message = %q, want it to name the schedule", result.Message)
	}
}

func TestChargeSavedTokenInvoicePrefix(t *testing.T) {
	gw := &fakeGateway{tokenResult: &models.GatewayResult{Outcome: models.OutcomeApproved}}
	svc := newTestService(gw, sandboxSettings(), &fakeStore{}, time.Now())

	svc.ChargeSavedToken(context.Background(), &models.RecurringSubscription{
		Token:    "tok_1",
		Amount:   25,
		Currency: "USD",
	})

	if len(gw.tokenCalls) != 1 {
		t.Fatalf("token calls = %d, want 1", len(gw.tokenCalls))
	}
	call := gw.tokenCalls[0]
	if call.Token != "tok_1" {
		t.Errorf("Token = %q", call.Token)
	}
	if !strings.HasPrefix(call.Invoice, "DONATION-RECURRING-") {
		t.Errorf("invoice %q missing DONATION-RECURRING- prefix", call.Invoice)
	}
}

func TestScheduleNameTruncated(t *testing.T) {
	req := monthlyRequest()
	req.FirstName = strings.Repeat("A", 40)
	req.LastName = strings.Repeat("B", 40)

	if name := scheduleName(req); len(name) != 50 {
		t.Errorf("len(scheduleName) = %d, want 50", len(name))
	}
}

func testFormConfig() models.FormConfig {
	return models.FormConfig{
		EnabledCurrencies: []string{"USD", "EUR"},
		DefaultCurrency:   "USD",
		RequiredFields: map[string]bool{
			"firstName": true,
			"lastName":  true,
			"email":     true,
			"phone":     false,
			"address":   false,
		},
	}
}

func TestValidateDonation(t *testing.T) {
	cfg := testFormConfig()

	valid := func() *models.DonationRequest {
		return &models.DonationRequest{
			DonationType: models.DonationOneTime,
			Amount:       10,
			Currency:     "USD",
			CardNumber:   "4111111111111111",
			Expiry:       "1299",
			CVV:          "123",
			FirstName:    "Jane",
			LastName:     "Doe",
			Email:        "jane@example.com",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.DonationRequest)
		wantErr bool
	}{
		{"valid one-time", func(r *models.DonationRequest) {}, false},
		{"valid monthly", func(r *models.DonationRequest) {
			r.DonationType = models.DonationMonthly
			r.ChargeDay = 15
		}, false},
		{"optional fields empty", func(r *models.DonationRequest) {
			r.Phone = ""
			r.Address = ""
		}, false},
		{"unknown type", func(r *models.DonationRequest) { r.DonationType = "weekly" }, true},
		{"zero amount", func(r *models.DonationRequest) { r.Amount = 0 }, true},
		{"negative amount", func(r *models.DonationRequest) { r.Amount = -5 }, true},
		{"disabled currency", func(r *models.DonationRequest) { r.Currency = "JPY" }, true},
		{"luhn failure", func(r *models.DonationRequest) { r.CardNumber = "4111111111111112" }, true},
		{"card too short", func(r *models.DonationRequest) { r.CardNumber = "411111" }, true},
		{"card with letters", func(r *models.DonationRequest) { r.CardNumber = "4111abcd11111111" }, true},
		{"short cvv", func(r *models.DonationRequest) { r.CVV = "12" }, true},
		{"expired card", func(r *models.DonationRequest) { r.Expiry = "0120" }, true},
		{"garbage expiry", func(r *models.DonationRequest) { r.Expiry = "13-99" }, true},
		{"missing required email", func(r *models.DonationRequest) { r.Email = "" }, true},
		{"monthly without charge day", func(r *models.DonationRequest) {
			r.DonationType = models.DonationMonthly
			r.ChargeDay = 0
		}, true},
		{"monthly charge day too high", func(r *models.DonationRequest) {
			r.DonationType = models.DonationMonthly
			r.ChargeDay = 32
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := ValidateDonation(req, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDonation() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateExpiryEndOfMonth(t *testing.T) {
	// A card expiring 08/26 is still valid on August 31st 2026.
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if !validateExpiry("0826", now) {
		t.Error("card should be valid through the end of its expiry month")
	}
	if validateExpiry("0826", time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC)) {
		t.Error("card should be expired after its expiry month ends")
	}
}
