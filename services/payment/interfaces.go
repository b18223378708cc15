package payment

import (
	"context"

	"sola-donation-api/models"
	"sola-donation-api/services/payment/cardknox"
)

// SettingsProvider supplies the admin-configured gateway credentials and
// donation form configuration. Read-only to the payment core.
type SettingsProvider interface {
	GetCredentials(ctx context.Context) (models.GatewayCredentials, error)
	GetFormConfig(ctx context.Context) (models.FormConfig, error)
}

// SubscriptionStore records recurring subscriptions for admin visibility.
type SubscriptionStore interface {
	SaveSubscription(ctx context.Context, sub *models.RecurringSubscription) (int64, error)
}

// Gateway is the card-processing surface the flows run against.
type Gateway interface {
	Sale(ctx context.Context, creds models.GatewayCredentials, req *cardknox.SaleRequest) *models.GatewayResult
	SaveCard(ctx context.Context, creds models.GatewayCredentials, req *cardknox.SaveCardRequest) *models.GatewayResult
	ChargeToken(ctx context.Context, creds models.GatewayCredentials, req *cardknox.TokenSaleRequest) *models.GatewayResult
	CreateSchedule(ctx context.Context, creds models.GatewayCredentials, req *cardknox.ScheduleRequest) *models.GatewayResult
}
