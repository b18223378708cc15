package email

import "fmt"

func receiptBody(donorName, amount, currency, refNum string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Thank you, %s!</h2>
	<p>We received your donation of <strong>%s %s</strong>.</p>
	<p>Transaction reference: <strong>%s</strong></p>
	<p>Your support makes our work possible.</p>
</body>
</html>`, donorName, amount, currency, refNum)
}

func recurringConfirmationBody(donorName, amount, currency string, chargeDay int, startDate string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
	<h2>Thank you, %s!</h2>
	<p>Your monthly donation of <strong>%s %s</strong> is set up.</p>
	<p>First charge: <strong>%s</strong>. You will be charged on day %d of each month after that.</p>
	<p>Your ongoing support makes our work possible.</p>
</body>
</html>`, donorName, amount, currency, startDate, chargeDay)
}
