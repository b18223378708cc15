package email

type EmailSender interface {
	SendEmail(to, subject, body string) error
	SendReceiptEmail(to, donorName, amount, currency, refNum string) error
	SendRecurringConfirmationEmail(to, donorName, amount, currency string, chargeDay int, startDate string) error
}
