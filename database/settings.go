package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"sola-donation-api/models"
)

// Settings live in the donation_settings key-value table, the analog of the
// plugin's options store. Structured values are stored as JSON strings.
const settingsQuery = `SELECT value FROM donation_settings WHERE name = ?`

func (c *Connection) getSetting(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx, settingsQuery, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error reading setting %s: %v", name, err)
	}
	return value, true, nil
}

// GetCredentials returns the configured gateway keys and sandbox flag.
// Sandbox mode defaults to on when unset, matching the settings page.
func (c *Connection) GetCredentials(ctx context.Context) (models.GatewayCredentials, error) {
	creds := models.GatewayCredentials{SandboxMode: true}

	if value, ok, err := c.getSetting(ctx, "sandbox_mode"); err != nil {
		return creds, err
	} else if ok {
		creds.SandboxMode = value == "1" || value == "true"
	}

	if value, ok, err := c.getSetting(ctx, "sandbox_key"); err != nil {
		return creds, err
	} else if ok {
		creds.SandboxKey = value
	}

	if value, ok, err := c.getSetting(ctx, "production_key"); err != nil {
		return creds, err
	} else if ok {
		creds.ProductionKey = value
	}

	return creds, nil
}

// GetFormConfig returns the donation form configuration, falling back to the
// defaults the settings page ships with for anything not yet saved.
func (c *Connection) GetFormConfig(ctx context.Context) (models.FormConfig, error) {
	cfg := defaultFormConfig()

	if value, ok, err := c.getSetting(ctx, "preset_amounts"); err != nil {
		return cfg, err
	} else if ok {
		var amounts map[string][]float64
		if err := json.Unmarshal([]byte(value), &amounts); err != nil {
			log.Printf("Warning: ignoring malformed preset_amounts setting: %v", err)
		} else {
			cfg.PresetAmounts = amounts
		}
	}

	if value, ok, err := c.getSetting(ctx, "enabled_currencies"); err != nil {
		return cfg, err
	} else if ok {
		var currencies []string
		if err := json.Unmarshal([]byte(value), &currencies); err != nil {
			log.Printf("Warning: ignoring malformed enabled_currencies setting: %v", err)
		} else if len(currencies) > 0 {
			cfg.EnabledCurrencies = currencies
		}
	}

	if value, ok, err := c.getSetting(ctx, "default_currency"); err != nil {
		return cfg, err
	} else if ok && value != "" {
		cfg.DefaultCurrency = value
	}

	if value, ok, err := c.getSetting(ctx, "required_fields"); err != nil {
		return cfg, err
	} else if ok {
		var fields map[string]bool
		if err := json.Unmarshal([]byte(value), &fields); err != nil {
			log.Printf("Warning: ignoring malformed required_fields setting: %v", err)
		} else {
			cfg.RequiredFields = fields
		}
	}

	return cfg, nil
}

func defaultFormConfig() models.FormConfig {
	presets := []float64{10, 25, 50, 100}
	return models.FormConfig{
		PresetAmounts: map[string][]float64{
			"USD": presets,
			"CAD": presets,
			"EUR": presets,
			"GBP": presets,
		},
		EnabledCurrencies: []string{"USD", "CAD", "EUR", "GBP"},
		DefaultCurrency:   "USD",
		RequiredFields: map[string]bool{
			"firstName": true,
			"lastName":  true,
			"email":     true,
			"phone":     false,
			"address":   false,
		},
	}
}
