package cardknox

import "time"

const (
	GatewayEndpoint   = "https://x1.cardknox.com/gateway"
	RecurringEndpoint = "https://api.cardknox.com/v1"

	GatewayVersion  = "5.0.0"
	SoftwareName    = "Sola Donation Plugin"
	SoftwareVersion = "1.4.0"

	CommandSale     = "cc:sale"
	CommandSaveCard = "cc:save"

	// The recurring API authenticates with the raw xKey in the Authorization
	// header plus a version header, unlike the form gateway.
	RecurringAPIVersionHeader = "X-Recurring-Api-Version"
	RecurringAPIVersion       = "2.0"

	GatewayTimeout   = 30 * time.Second
	RecurringTimeout = 45 * time.Second

	// Gateway result codes. The recurring API reports success as "S".
	ResultApproved = "A"
	ResultDeclined = "D"
	ResultSuccess  = "S"

	// Retry policy executed by the remote scheduler for failed recurring
	// charges. The client itself never retries.
	scheduleRetryTimes       = 3
	scheduleDaysBetweenRetry = 2
	scheduleAfterMaxRetries  = "ContinueNextInterval"
	scheduleIntervalType     = "Month"
	scheduleRuleDayOfMonth   = "DayOfMonth"
)

// SaleRequest carries everything needed for a one-time cc:sale.
type SaleRequest struct {
	Amount      float64
	Currency    string
	CardNumber  string
	Expiry      string // MMYY
	CVV         string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	Address     string
	Invoice     string
	Description string
}

// SaveCardRequest tokenizes a card via cc:save. No amount is sent.
type SaveCardRequest struct {
	CardNumber string
	Expiry     string
	CVV        string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
}

// TokenSaleRequest charges a previously saved token via cc:sale + xToken.
type TokenSaleRequest struct {
	Token       string
	Amount      float64
	Currency    string
	Invoice     string
	Description string
}

// ScheduleRequest creates a recurring schedule with an inline new customer
// and new payment method.
type ScheduleRequest struct {
	Token     string
	Expiry    string
	CVV       string // sent only when the first charge runs immediately
	Amount    float64
	Currency  string
	StartDate string // YYYY-MM-DD
	ChargeDay int    // ongoing day-of-month rule, 1-31

	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string

	ScheduleName string
	Description  string
	CustReceipt  bool
}

type newCustomer struct {
	BillFirstName string `json:"BillFirstName"`
	BillLastName  string `json:"BillLastName"`
	Email         string `json:"Email"`
	BillPhone     string `json:"BillPhone,omitempty"`
	BillStreet    string `json:"BillStreet,omitempty"`
	CustomerNotes string `json:"CustomerNotes,omitempty"`
}

type newPaymentMethod struct {
	Token        string `json:"Token"`
	TokenType    string `json:"TokenType"`
	Exp          string `json:"Exp"`
	SetAsDefault bool   `json:"SetAsDefault"`
}

type scheduleRule struct {
	RuleType   string `json:"RuleType"`
	DayOfMonth int    `json:"DayOfMonth"`
}

type createScheduleRequest struct {
	NewCustomer      newCustomer      `json:"NewCustomer"`
	NewPaymentMethod newPaymentMethod `json:"NewPaymentMethod"`

	Amount        string       `json:"Amount"`
	Currency      string       `json:"Currency"`
	IntervalType  string       `json:"IntervalType"`
	IntervalCount int          `json:"IntervalCount"`
	StartDate     string       `json:"StartDate"`
	ScheduleName  string       `json:"ScheduleName"`
	Description   string       `json:"Description,omitempty"`
	ScheduleRule  scheduleRule `json:"ScheduleRule"`

	FailedTransactionRetryTimes      int    `json:"FailedTransactionRetryTimes"`
	DaysBetweenRetries               int    `json:"DaysBetweenRetries"`
	AfterMaxRetriesAction            string `json:"AfterMaxRetriesAction"`
	AllowInitialTransactionToDecline bool   `json:"AllowInitialTransactionToDecline"`
	CustReceipt                      bool   `json:"CustReceipt"`

	Cvv string `json:"Cvv,omitempty"`
}

type createScheduleResponse struct {
	Result          string `json:"Result"`
	Error           string `json:"Error"`
	RefNum          string `json:"RefNum"`
	ScheduleID      string `json:"ScheduleId"`
	CustomerID      string `json:"CustomerId"`
	PaymentMethodID string `json:"PaymentMethodId"`
}
