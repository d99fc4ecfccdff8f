package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// checkoutRequest mirrors the contact shape the order endpoints validate.
type checkoutRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,e164"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeEmail, includePhone bool) bool {
			reqMap := make(map[string]interface{})
			if includeEmail {
				reqMap["email"] = "buyer@example.com"
			}
			if includePhone {
				reqMap["phone"] = "+15551234567"
			}
			allFieldsPresent := includeEmail && includePhone

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var checkout checkoutRequest
			err := DecodeAndValidate(req, &checkout)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidate_PhoneFormat(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		valid bool
	}{
		{"e164 with country code", "+15551234567", true},
		{"e164 short", "+4512345678", true},
		{"missing plus", "15551234567", false},
		{"dashes", "555-123-4567", false},
		{"letters", "+1555CALLNOW", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{
				"email": "buyer@example.com",
				"phone": tc.phone,
			})
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			var checkout checkoutRequest
			err := DecodeAndValidate(req, &checkout)

			if tc.valid && err != nil {
				t.Errorf("phone %q rejected: %v", tc.phone, err)
			}
			if !tc.valid && err == nil {
				t.Errorf("phone %q accepted", tc.phone)
			}
		})
	}
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var checkout checkoutRequest
	if err := DecodeAndValidate(req, &checkout); err == nil {
		t.Error("malformed JSON accepted")
	}
}

func TestFormatValidationErrors(t *testing.T) {
	body, _ := json.Marshal(map[string]string{
		"email": "not-an-email",
		"phone": "555-1234",
	})
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var checkout checkoutRequest
	err := DecodeAndValidate(req, &checkout)
	if err == nil {
		t.Fatal("expected validation failure")
	}

	formatted := FormatValidationErrors(err)
	if len(formatted) != 2 {
		t.Fatalf("got %d validation errors, want 2", len(formatted))
	}

	byField := map[string]string{}
	for _, fe := range formatted {
		byField[fe.Field] = fe.Message
	}
	if byField["Email"] != "Invalid email format" {
		t.Errorf("email message = %q", byField["Email"])
	}
	if byField["Phone"] != "Invalid phone number format" {
		t.Errorf("phone message = %q", byField["Phone"])
	}
}
