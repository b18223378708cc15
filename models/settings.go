package models

// GatewayCredentials selects the active Cardknox key. Exactly one key is
// active per request depending on the sandbox flag.
type GatewayCredentials struct {
	SandboxMode   bool
	SandboxKey    string
	ProductionKey string
}

// ActiveKey returns the key matching the configured mode. An empty return
// means the gateway is not configured and no request may be sent.
func (c GatewayCredentials) ActiveKey() string {
	if c.SandboxMode {
		return c.SandboxKey
	}
	return c.ProductionKey
}

// FormConfig drives the donation form: preset amounts per currency, the
// currencies donors may pick, and which identity fields are required.
type FormConfig struct {
	PresetAmounts     map[string][]float64 `json:"preset_amounts"`
	EnabledCurrencies []string             `json:"enabled_currencies"`
	DefaultCurrency   string               `json:"default_currency"`
	RequiredFields    map[string]bool      `json:"required_fields"`
}

// CurrencyEnabled reports whether donors may donate in the given currency.
func (f FormConfig) CurrencyEnabled(currency string) bool {
	for _, c := range f.EnabledCurrencies {
		if c == currency {
			return true
		}
	}
	return false
}

// FieldRequired reports whether a form field must be present. Fields absent
// from the map default to required, matching the settings page defaults.
func (f FormConfig) FieldRequired(field string) bool {
	required, ok := f.RequiredFields[field]
	if !ok {
		return true
	}
	return required
}
