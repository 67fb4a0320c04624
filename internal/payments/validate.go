package payments

import (
	"strings"
	"time"

	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
)

// CardDetails is the raw card form input as typed by the customer.
type CardDetails struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

// CleanCard is the validated, whitespace-stripped card ready for
// gateway metadata. Only cleaned values ever leave the process.
type CleanCard struct {
	PAN        string
	Expiry     string
	CVV        string
	HolderName string
}

// EcocashDetails is the raw mobile-money form input.
type EcocashDetails struct {
	PhoneNumber string
}

// ValidateCard checks PAN, expiry, and CVV before any network call.
func ValidateCard(details CardDetails, now time.Time) (CleanCard, error) {
	pan := stripWhitespace(details.Number)
	if pan == "" {
		return CleanCard{}, pkgerrors.New(pkgerrors.CodeValidation, "card number is required")
	}
	if !digitsOnly(pan) {
		return CleanCard{}, pkgerrors.New(pkgerrors.CodeValidation, "card number must contain digits only")
	}
	if len(pan) < 13 || len(pan) > 19 {
		return CleanCard{}, pkgerrors.New(pkgerrors.CodeValidation, "card number must be 13 to 19 digits")
	}
	if !luhnValid(pan) {
		return CleanCard{}, pkgerrors.New(pkgerrors.CodeValidation, "card number failed validation, please re-check it")
	}

	expiry := stripWhitespace(details.Expiry)
	if err := validateExpiry(expiry, now); err != nil {
		return CleanCard{}, err
	}

	cvv := stripWhitespace(details.CVV)
	if !digitsOnly(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return CleanCard{}, pkgerrors.New(pkgerrors.CodeValidation, "cvv must be 3 or 4 digits")
	}

	return CleanCard{
		PAN:        pan,
		Expiry:     expiry,
		CVV:        cvv,
		HolderName: strings.TrimSpace(details.HolderName),
	}, nil
}

// validateExpiry enforces the MMYY format against the current month.
func validateExpiry(expiry string, now time.Time) error {
	if len(expiry) != 4 || !digitsOnly(expiry) {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry must be 4 digits (MMYY)")
	}
	month := int(expiry[0]-'0')*10 + int(expiry[1]-'0')
	if month < 1 || month > 12 {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry month must be between 01 and 12")
	}
	year := 2000 + int(expiry[2]-'0')*10 + int(expiry[3]-'0')

	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return pkgerrors.New(pkgerrors.CodeValidation, "card has expired")
	}
	return nil
}

// CleanEcocashNumber strips all non-digits from the entered phone and
// requires the remaining digit count to be in [9,12].
func CleanEcocashNumber(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 9 || len(digits) > 12 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "mobile money number must have 9 to 12 digits")
	}
	return digits, nil
}

// luhnValid runs the Luhn checksum over a digits-only PAN.
func luhnValid(pan string) bool {
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func stripWhitespace(value string) string {
	return strings.Join(strings.Fields(value), "")
}

func digitsOnly(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
