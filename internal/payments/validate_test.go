package payments

import (
	"testing"
	"time"

	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

var testNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func validCard() CardDetails {
	return CardDetails{
		Number: "4539 1488 0343 6467",
		Expiry: "1230",
		CVV:    "123",
	}
}

func TestValidateCardAcceptsLuhnValidNumber(t *testing.T) {
	card, err := ValidateCard(validCard(), testNow)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if card.PAN != "4539148803436467" {
		t.Fatalf("PAN not cleaned, got %q", card.PAN)
	}
}

func TestValidateCardRejectsLuhnInvalidNumber(t *testing.T) {
	details := validCard()
	details.Number = "4539148803436468"

	_, err := ValidateCard(details, testNow)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateCardRejectsNonDigitsBeforeLuhn(t *testing.T) {
	details := validCard()
	details.Number = "4539-1488-0343-6467"

	_, err := ValidateCard(details, testNow)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestValidateCardLengthBounds(t *testing.T) {
	for _, number := range []string{"453914880343", "45391488034364670000"} {
		details := validCard()
		details.Number = number
		if _, err := ValidateCard(details, testNow); err == nil {
			t.Fatalf("expected rejection for %d-digit number", len(number))
		}
	}
}

func TestValidateCardExpiry(t *testing.T) {
	cases := []struct {
		expiry string
		ok     bool
	}{
		{"0125", false}, // past year
		{"0526", false}, // previous month
		{"0626", true},  // current month is still valid
		{"1230", true},
		{"1330", false}, // month out of range
		{"0026", false},
		{"126", false}, // not MMYY
		{"abcd", false},
	}
	for _, tc := range cases {
		details := validCard()
		details.Expiry = tc.expiry
		_, err := ValidateCard(details, testNow)
		if tc.ok && err != nil {
			t.Fatalf("expiry %q rejected: %v", tc.expiry, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("expiry %q accepted", tc.expiry)
		}
	}
}

func TestValidateCardCVV(t *testing.T) {
	for _, cvv := range []string{"12", "12345", "12a"} {
		details := validCard()
		details.CVV = cvv
		if _, err := ValidateCard(details, testNow); err == nil {
			t.Fatalf("cvv %q accepted", cvv)
		}
	}

	details := validCard()
	details.CVV = "1234"
	if _, err := ValidateCard(details, testNow); err != nil {
		t.Fatalf("4-digit cvv rejected: %v", err)
	}
}

func TestCleanEcocashNumber(t *testing.T) {
	digits, err := CleanEcocashNumber("077 123 4567")
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	if digits != "0771234567" {
		t.Fatalf("got %q, want 0771234567", digits)
	}

	if _, err := CleanEcocashNumber("12345"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for short number, got %v", err)
	}
	if _, err := CleanEcocashNumber("+263 77 123 4567"); err != nil {
		t.Fatalf("international format rejected: %v", err)
	}
}
