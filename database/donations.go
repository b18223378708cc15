package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"sola-donation-api/models"
)

// SaveDonation records an approved one-time donation for admin visibility.
func (c *Connection) SaveDonation(ctx context.Context, rec *models.DonationRecord) (int64, error) {
	if err := c.ensureConnection(); err != nil {
		return 0, fmt.Errorf("database connection check failed: %v", err)
	}

	query := `
		INSERT INTO donations
			(ref_num, invoice, amount, currency, donor_email, donor_name,
			 masked_card, card_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(opCtx, query,
		rec.RefNum, rec.Invoice, rec.Amount, rec.Currency,
		rec.DonorEmail, rec.DonorName, rec.MaskedCard, rec.CardType,
		rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("error saving donation: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("error getting donation id: %v", err)
	}

	rec.ID = id
	log.Printf("Recorded donation %d (ref %s)", id, rec.RefNum)
	return id, nil
}

// ListDonations returns recorded one-time donations, newest first.
func (c *Connection) ListDonations(ctx context.Context, limit int) ([]models.DonationRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, ref_num, invoice, amount, currency, donor_email,
		       donor_name, masked_card, card_type, created_at
		FROM donations
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing donations: %v", err)
	}
	defer rows.Close()

	var records []models.DonationRecord
	for rows.Next() {
		var rec models.DonationRecord
		err := rows.Scan(&rec.ID, &rec.RefNum, &rec.Invoice, &rec.Amount,
			&rec.Currency, &rec.DonorEmail, &rec.DonorName,
			&rec.MaskedCard, &rec.CardType, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning donation: %v", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
