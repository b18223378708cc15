package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// GenerateInvoiceID builds a gateway invoice number from the current unix
// timestamp plus a random four-digit suffix, e.g. "DONATION-1714656000-4821".
// The scheme is kept compatible with invoice numbers already recorded at the
// gateway; the collision window under concurrent submissions is accepted.
func GenerateInvoiceID(prefix string) string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	suffix := int64(1000)
	if err == nil {
		suffix += n.Int64()
	}
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().Unix(), suffix)
}
