package cardknox

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"sola-donation-api/models"
	"sola-donation-api/utils"
)

const scheduleFallback = "Failed to create recurring schedule. Please try again."

// CreateSchedule registers a monthly recurring schedule with an inline new
// customer and payment method. The remote scheduler owns all subsequent
// charges, including the retry policy for failed ones.
func (c *Client) CreateSchedule(ctx context.Context, creds models.GatewayCredentials, req *ScheduleRequest) *models.GatewayResult {
	payload := createScheduleRequest{
		NewCustomer: newCustomer{
			BillFirstName: req.FirstName,
			BillLastName:  req.LastName,
			Email:         req.Email,
			BillPhone:     req.Phone,
			BillStreet:    req.Address,
			CustomerNotes: req.Description,
		},
		NewPaymentMethod: newPaymentMethod{
			Token:        req.Token,
			TokenType:    "cc",
			Exp:          req.Expiry,
			SetAsDefault: true,
		},
		Amount:        utils.FormatAmount(req.Amount),
		Currency:      req.Currency,
		IntervalType:  scheduleIntervalType,
		IntervalCount: 1,
		StartDate:     req.StartDate,
		ScheduleName:  req.ScheduleName,
		Description:   req.Description,
		ScheduleRule: scheduleRule{
			RuleType:   scheduleRuleDayOfMonth,
			DayOfMonth: req.ChargeDay,
		},
		FailedTransactionRetryTimes:      scheduleRetryTimes,
		DaysBetweenRetries:               scheduleDaysBetweenRetry,
		AfterMaxRetriesAction:            scheduleAfterMaxRetries,
		AllowInitialTransactionToDecline: false,
		CustReceipt:                      req.CustReceipt,
		Cvv:                              req.CVV,
	}

	log.Printf("Creating schedule: amount=%s currency=%s start=%s day=%d key=%s",
		payload.Amount, req.Currency, req.StartDate, req.ChargeDay,
		utils.RedactKey(creds.ActiveKey()))

	body, status, err := c.postRecurring(ctx, creds.ActiveKey(), "/CreateSchedule", payload)
	if err != nil {
		log.Printf("Recurring API request failed: %v", err)
		return &models.GatewayResult{
			Outcome: models.OutcomeTransportError,
			Message: scheduleFallback,
		}
	}

	var resp createScheduleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Printf("Unparseable recurring API response (HTTP %d, %d bytes)", status, len(body))
		return &models.GatewayResult{
			Outcome: models.OutcomeError,
			Message: scheduleFallback,
		}
	}

	if resp.Result != ResultSuccess {
		message := resp.Error
		if message == "" {
			message = fmt.Sprintf("%s (HTTP %d)", scheduleFallback, status)
		}
		log.Printf("Schedule creation rejected: result=%q", resp.Result)
		return &models.GatewayResult{
			Outcome: models.OutcomeError,
			Message: message,
		}
	}

	return &models.GatewayResult{
		Outcome:         models.OutcomeApproved,
		ScheduleID:      resp.ScheduleID,
		CustomerID:      resp.CustomerID,
		PaymentMethodID: resp.PaymentMethodID,
		StartDate:       req.StartDate,
		RefNum:          resp.RefNum,
	}
}
