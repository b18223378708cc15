package cardknox

import (
	"errors"
	"testing"

	"sola-donation-api/models"
)

func TestParseGatewayResponseURLEncoded(t *testing.T) {
	fields, err := ParseGatewayResponse([]byte("xResult=A&xRefNum=123&xAuthCode=OK123"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fields.Get("xResult"); got != "A" {
		t.Errorf("xResult = %q, want %q", got, "A")
	}
	if got := fields.Get("xRefNum"); got != "123" {
		t.Errorf("xRefNum = %q, want %q", got, "123")
	}
	if got := fields.Get("xAuthCode"); got != "OK123" {
		t.Errorf("xAuthCode = %q, want %q", got, "OK123")
	}
}

func TestParseGatewayResponseJSON(t *testing.T) {
	fields, err := ParseGatewayResponse([]byte(`{"xResult":"A","xRefNum":"123"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fields.Get("xResult"); got != "A" {
		t.Errorf("xResult = %q, want %q", got, "A")
	}
	if got := fields.Get("xRefNum"); got != "123" {
		t.Errorf("xRefNum = %q, want %q", got, "123")
	}
}

func TestParseGatewayResponseJSONNumericValues(t *testing.T) {
	fields, err := ParseGatewayResponse([]byte(`{"xResult":"E","xErrorCode":12345}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fields.Get("xErrorCode"); got != "12345" {
		t.Errorf("xErrorCode = %q, want %q", got, "12345")
	}
}

func TestParseGatewayResponseBOMPrefix(t *testing.T) {
	fields, err := ParseGatewayResponse([]byte("\ufeff" + `{"xResult":"D","xError":"Declined"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := fields.Get("xResult"); got != "D" {
		t.Errorf("xResult = %q, want %q", got, "D")
	}
}

func TestParseGatewayResponseMalformed(t *testing.T) {
	bodies := []string{
		"<html><body>502 Bad Gateway</body></html>",
		"",
		`{"Result":"S"}`, // recurring shape, no xResult discriminator
	}

	for _, body := range bodies {
		_, err := ParseGatewayResponse([]byte(body))
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("ParseGatewayResponse(%q) error = %v, want ErrMalformedResponse", body, err)
		}
	}
}

func TestOutcomeForResult(t *testing.T) {
	tests := []struct {
		code string
		want models.Outcome
	}{
		{"A", models.OutcomeApproved},
		{"D", models.OutcomeDeclined},
		{"E", models.OutcomeError},
		{"", models.OutcomeError},
		{"S", models.OutcomeError}, // recurring success code is not a gateway code
	}

	for _, tt := range tests {
		if got := outcomeForResult(tt.code); got != tt.want {
			t.Errorf("outcomeForResult(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestErrorMessagePrefersGatewayText(t *testing.T) {
	fields := Fields{"xError": "Insufficient funds", "xErrorCode": "005"}
	msg, code := errorMessage(fields, "fallback")
	if msg != "Insufficient funds" {
		t.Errorf("message = %q, want gateway text", msg)
	}
	if code != "005" {
		t.Errorf("code = %q, want %q", code, "005")
	}
}

func TestErrorMessageFallback(t *testing.T) {
	msg, code := errorMessage(Fields{}, "fallback")
	if msg != "fallback" {
		t.Errorf("message = %q, want fallback", msg)
	}
	if code != "" {
		t.Errorf("code = %q, want empty", code)
	}
}

func TestErrorMessageCodeOnly(t *testing.T) {
	msg, _ := errorMessage(Fields{"xErrorCode": "E42"}, "Failed to save payment method.")
	want := "Failed to save payment method. Error code: E42"
	if msg != want {
		t.Errorf("message = %q, want %q", msg, want)
	}
}
