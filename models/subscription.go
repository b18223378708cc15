package models

import "time"

// RecurringSubscription is the stored record of a recurring donation setup.
// It is written once on successful schedule creation and never mutated by
// the payment core; cancellation happens through the gateway's own tools.
type RecurringSubscription struct {
	ID              int64     `json:"id"`
	Token           string    `json:"token"`
	Amount          float64   `json:"amount"`
	Currency        string    `json:"currency"`
	ChargeDay       int       `json:"charge_day"`
	DonorEmail      string    `json:"donor_email"`
	DonorName       string    `json:"donor_name"`
	ScheduleID      string    `json:"schedule_id"`
	CustomerID      string    `json:"customer_id"`
	PaymentMethodID string    `json:"payment_method_id"`
	StartDate       string    `json:"start_date"`
	ChargedNow      bool      `json:"charged_now"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
