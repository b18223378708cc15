package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"sola-donation-api/models"
)

// SaveSubscription inserts the record of a newly created recurring donation.
// Records are insert-only; the payment core never mutates them afterwards.
func (c *Connection) SaveSubscription(ctx context.Context, sub *models.RecurringSubscription) (int64, error) {
	if err := c.ensureConnection(); err != nil {
		return 0, fmt.Errorf("database connection check failed: %v", err)
	}

	query := `
		INSERT INTO recurring_subscriptions
			(token, amount, currency, charge_day, donor_email, donor_name,
			 schedule_id, customer_id, payment_method_id, start_date,
			 charged_now, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(opCtx, query,
		sub.Token, sub.Amount, sub.Currency, sub.ChargeDay,
		sub.DonorEmail, sub.DonorName,
		sub.ScheduleID, sub.CustomerID, sub.PaymentMethodID, sub.StartDate,
		sub.ChargedNow, sub.Status, sub.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error saving subscription: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting subscription id: %v", err)
	}

	sub.ID = id
	log.Printf("Saved recurring subscription %d (schedule %s)", id, sub.ScheduleID)
	return id, nil
}

const subscriptionColumns = `
	id, token, amount, currency, charge_day, donor_email, donor_name,
	schedule_id, customer_id, payment_method_id, start_date,
	charged_now, status, created_at
`

// GetSubscription fetches one subscription record by local id.
func (c *Connection) GetSubscription(ctx context.Context, id int64) (*models.RecurringSubscription, error) {
	query := `SELECT` + subscriptionColumns + `FROM recurring_subscriptions WHERE id = ?`

	var sub models.RecurringSubscription
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&sub.ID, &sub.Token, &sub.Amount, &sub.Currency, &sub.ChargeDay,
		&sub.DonorEmail, &sub.DonorName,
		&sub.ScheduleID, &sub.CustomerID, &sub.PaymentMethodID, &sub.StartDate,
		&sub.ChargedNow, &sub.Status, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subscription %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting subscription %d: %v", id, err)
	}
	return &sub, nil
}

// ListSubscriptions returns all stored subscriptions, newest first.
func (c *Connection) ListSubscriptions(ctx context.Context) ([]models.RecurringSubscription, error) {
	query := `SELECT` + subscriptionColumns + `FROM recurring_subscriptions ORDER BY created_at DESC`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions: %v", err)
	}
	defer rows.Close()

	var subs []models.RecurringSubscription
	for rows.Next() {
		var sub models.RecurringSubscription
		err := rows.Scan(
			&sub.ID, &sub.Token, &sub.Amount, &sub.Currency, &sub.ChargeDay,
			&sub.DonorEmail, &sub.DonorName,
			&sub.ScheduleID, &sub.CustomerID, &sub.PaymentMethodID, &sub.StartDate,
			&sub.ChargedNow, &sub.Status, &sub.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription: %v", err)
		}
		subs = append(subs, sub)
	}

	return subs, rows.Err()
}
