package cardknox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"sola-donation-api/models"
)

// ErrMalformedResponse means the gateway body decoded under none of the known
// encodings. Callers must surface it as an Error outcome, not a crash.
var ErrMalformedResponse = errors.New("malformed gateway response")

// Fields is a decoded gateway response body.
type Fields map[string]string

func (f Fields) Get(key string) string {
	return f[key]
}

func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// The gateway answers URL-encoded by default but JSON from its json endpoint,
// so decoding is an ordered list of strategies stopped at the first one that
// yields the xResult discriminator.
var gatewayDecoders = []func([]byte) (Fields, bool){
	decodeFormBody,
	decodeJSONBody,
}

// ParseGatewayResponse decodes a raw gateway body into its key/value fields.
func ParseGatewayResponse(body []byte) (Fields, error) {
	body = bytes.TrimPrefix(body, []byte("\ufeff"))
	for _, decode := range gatewayDecoders {
		if fields, ok := decode(body); ok {
			return fields, nil
		}
	}
	return nil, ErrMalformedResponse
}

func decodeFormBody(body []byte) (Fields, bool) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, false
	}

	fields := make(Fields, len(values))
	for key := range values {
		fields[key] = values.Get(key)
	}

	if !fields.Has("xResult") {
		return nil, false
	}
	return fields, true
}

func decodeJSONBody(body []byte) (Fields, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}

	fields := make(Fields, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case float64, bool:
			fields[key] = fmt.Sprintf("%v", v)
		}
	}

	if !fields.Has("xResult") {
		return nil, false
	}
	return fields, true
}

// outcomeForResult maps the gateway's single-letter xResult to an outcome.
// Anything other than A or D, including a missing code, is an error.
func outcomeForResult(code string) models.Outcome {
	switch code {
	case ResultApproved:
		return models.OutcomeApproved
	case ResultDeclined:
		return models.OutcomeDeclined
	default:
		return models.OutcomeError
	}
}

// errorMessage extracts the gateway's own error text, falling back to the
// given generic message. The error code is appended when only a code exists.
func errorMessage(fields Fields, fallback string) (string, string) {
	code := fields.Get("xErrorCode")
	if msg := fields.Get("xError"); msg != "" {
		return msg, code
	}
	if code != "" {
		return fmt.Sprintf("%s Error code: %s", fallback, code), code
	}
	return fallback, ""
}
