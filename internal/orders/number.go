package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// standard base32 alphabet, matching the suffix format printed on invoices
const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

const orderNumberSuffixLen = 4

// GenerateOrderNumber produces a human-readable order number of the
// form ORD-<yyyymmddHHMMSS>-<4 random base32 chars>. Uniqueness is
// advisory: the timestamp plus suffix makes collisions unlikely but
// the database unique index is the only hard guarantee, and collisions
// are not reconciled automatically.
func GenerateOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102150405"), string(buf)), nil
}
