package models

import "time"

// Donation types accepted by the form.
const (
	DonationOneTime = "one-time"
	DonationMonthly = "monthly"
)

// DonationRequest is the payload submitted by the donation form.
type DonationRequest struct {
	DonationType string  `json:"donationType"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`

	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"` // MMYY
	CVV        string `json:"cvv"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`

	// Recurring-only fields.
	ChargeDay int  `json:"chargeDay"`
	ChargeNow bool `json:"chargeNow"`
}

// DonationRecord is the stored row for an approved one-time donation.
type DonationRecord struct {
	ID         int64     `json:"id"`
	RefNum     string    `json:"ref_num"`
	Invoice    string    `json:"invoice"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	DonorEmail string    `json:"donor_email"`
	DonorName  string    `json:"donor_name"`
	MaskedCard string    `json:"masked_card"`
	CardType   string    `json:"card_type"`
	CreatedAt  time.Time `json:"created_at"`
}
