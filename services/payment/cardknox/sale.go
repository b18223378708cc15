package cardknox

import (
	"context"
	"errors"
	"log"

	"sola-donation-api/models"
	"sola-donation-api/utils"
)

const (
	declinedFallback  = "Payment was declined. Please check your card details and try again."
	transportFallback = "Payment gateway connection failed. Please try again."
	saveCardFallback  = "Failed to save payment method."
)

// Sale runs a one-time cc:sale with raw card data.
func (c *Client) Sale(ctx context.Context, creds models.GatewayCredentials, req *SaleRequest) *models.GatewayResult {
	fields := baseFields(creds.ActiveKey())
	fields.Set("xCommand", CommandSale)
	fields.Set("xAmount", utils.FormatAmount(req.Amount))
	fields.Set("xCardNum", req.CardNumber)
	fields.Set("xExp", req.Expiry)
	fields.Set("xCVV", req.CVV)
	fields.Set("xBillFirstName", req.FirstName)
	fields.Set("xBillLastName", req.LastName)
	fields.Set("xEmail", req.Email)
	fields.Set("xBillPhone", req.Phone)
	fields.Set("xBillStreet", req.Address)
	fields.Set("xCurrency", req.Currency)
	fields.Set("xInvoice", req.Invoice)
	fields.Set("xDescription", req.Description)
	fields.Set("xAllowDuplicate", "false")

	log.Printf("Submitting one-time sale: amount=%s currency=%s invoice=%s card=%s sandbox=%v",
		utils.FormatAmount(req.Amount), req.Currency, req.Invoice,
		utils.MaskCardNumber(req.CardNumber), creds.SandboxMode)

	parsed, err := c.postForm(ctx, fields)
	if err != nil {
		return saleFailure(err)
	}
	return saleResult(parsed, req.Invoice)
}

// ChargeToken runs a cc:sale against a saved token instead of raw card data.
func (c *Client) ChargeToken(ctx context.Context, creds models.GatewayCredentials, req *TokenSaleRequest) *models.GatewayResult {
	fields := baseFields(creds.ActiveKey())
	fields.Set("xCommand", CommandSale)
	fields.Set("xAmount", utils.FormatAmount(req.Amount))
	fields.Set("xToken", req.Token)
	fields.Set("xCurrency", req.Currency)
	fields.Set("xInvoice", req.Invoice)
	fields.Set("xDescription", req.Description)

	log.Printf("Submitting token sale: amount=%s currency=%s invoice=%s",
		utils.FormatAmount(req.Amount), req.Currency, req.Invoice)

	parsed, err := c.postForm(ctx, fields)
	if err != nil {
		return saleFailure(err)
	}
	return saleResult(parsed, req.Invoice)
}

// SaveCard tokenizes a card via cc:save. On approval the opaque token comes
// back in the result; any other outcome carries the gateway's own message.
func (c *Client) SaveCard(ctx context.Context, creds models.GatewayCredentials, req *SaveCardRequest) *models.GatewayResult {
	fields := baseFields(creds.ActiveKey())
	fields.Set("xCommand", CommandSaveCard)
	fields.Set("xCardNum", req.CardNumber)
	fields.Set("xExp", req.Expiry)
	fields.Set("xCVV", req.CVV)
	fields.Set("xBillFirstName", req.FirstName)
	fields.Set("xBillLastName", req.LastName)
	fields.Set("xEmail", req.Email)
	fields.Set("xBillPhone", req.Phone)
	fields.Set("xBillStreet", req.Address)

	log.Printf("Saving card token: card=%s exp=%s key=%s",
		utils.MaskCardNumber(req.CardNumber), req.Expiry, utils.RedactKey(creds.ActiveKey()))

	parsed, err := c.postForm(ctx, fields)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return &models.GatewayResult{
				Outcome: models.OutcomeError,
				Message: saveCardFallback,
			}
		}
		return &models.GatewayResult{
			Outcome: models.OutcomeTransportError,
			Message: "Failed to setup recurring donation. Please try again.",
		}
	}

	token := parsed.Get("xToken")
	if token == "" {
		message, code := errorMessage(parsed, saveCardFallback)
		outcome := outcomeForResult(parsed.Get("xResult"))
		if outcome == models.OutcomeApproved {
			// Approved but tokenless should not happen; treat it as an error.
			outcome = models.OutcomeError
		}
		log.Printf("Token creation failed: result=%q code=%q", parsed.Get("xResult"), code)
		return &models.GatewayResult{
			Outcome:   outcome,
			Message:   message,
			ErrorCode: code,
		}
	}

	return &models.GatewayResult{
		Outcome:    models.OutcomeApproved,
		Token:      token,
		MaskedCard: parsed.Get("xMaskedCardNumber"),
		CardType:   parsed.Get("xCardType"),
		RefNum:     parsed.Get("xRefNum"),
	}
}

func saleFailure(err error) *models.GatewayResult {
	if errors.Is(err, ErrMalformedResponse) {
		return &models.GatewayResult{
			Outcome: models.OutcomeError,
			Message: declinedFallback,
		}
	}
	log.Printf("Gateway request failed: %v", err)
	return &models.GatewayResult{
		Outcome: models.OutcomeTransportError,
		Message: transportFallback,
	}
}

func saleResult(parsed Fields, invoice string) *models.GatewayResult {
	outcome := outcomeForResult(parsed.Get("xResult"))
	if outcome != models.OutcomeApproved {
		message, code := errorMessage(parsed, declinedFallback)
		log.Printf("Sale not approved: result=%q code=%q", parsed.Get("xResult"), code)
		return &models.GatewayResult{
			Outcome:   outcome,
			Message:   message,
			ErrorCode: code,
			Invoice:   invoice,
		}
	}

	return &models.GatewayResult{
		Outcome:    models.OutcomeApproved,
		Message:    "Payment successful! Transaction #" + parsed.Get("xRefNum"),
		RefNum:     parsed.Get("xRefNum"),
		AuthCode:   parsed.Get("xAuthCode"),
		AuthAmount: parsed.Get("xAuthAmount"),
		MaskedCard: parsed.Get("xMaskedCardNumber"),
		CardType:   parsed.Get("xCardType"),
		Invoice:    invoice,
	}
}
