package models

// Outcome is the normalized disposition of a gateway call. The gateway's
// single-letter result codes are mapped to this type at the parsing boundary
// so downstream logic never compares raw strings.
type Outcome int

const (
	OutcomeApproved Outcome = iota
	OutcomeDeclined
	OutcomeError
	OutcomeTransportError
	OutcomeConfigError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApproved:
		return "approved"
	case OutcomeDeclined:
		return "declined"
	case OutcomeError:
		return "error"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeConfigError:
		return "config_error"
	}
	return "unknown"
}

// GatewayResult is the structured outcome of a payment submission. It is
// created per call and consumed immediately by the caller, never persisted.
type GatewayResult struct {
	Outcome   Outcome `json:"outcome"`
	Message   string  `json:"message"`
	ErrorCode string  `json:"error_code,omitempty"`

	// Populated on approved one-time charges.
	RefNum     string `json:"ref_num,omitempty"`
	AuthCode   string `json:"auth_code,omitempty"`
	AuthAmount string `json:"auth_amount,omitempty"`
	MaskedCard string `json:"masked_card,omitempty"`
	CardType   string `json:"card_type,omitempty"`
	Invoice    string `json:"invoice,omitempty"`

	// Card token returned by cc:save. Kept out of JSON responses; it is
	// persisted with the subscription record instead.
	Token string `json:"-"`

	// Populated on successful recurring setup.
	ScheduleID      string `json:"schedule_id,omitempty"`
	CustomerID      string `json:"customer_id,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	StartDate       string `json:"start_date,omitempty"`
}

// Approved reports whether the call succeeded.
func (r *GatewayResult) Approved() bool {
	return r.Outcome == OutcomeApproved
}
