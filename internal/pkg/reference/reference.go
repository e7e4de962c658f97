// Package reference generates globally unique transaction references.
//
// References identify ledger rows and must stay unique under concurrent
// requests, so they are built from random UUIDs. Wall-clock timestamps are
// never part of a reference: concurrent requests can share a timestamp, and
// timestamp-derived references are guessable and replayable.
package reference

import (
	"strings"

	"github.com/google/uuid"
)

// Prefixes by ledger entry kind, kept short for support tooling and receipts.
const (
	PrefixTransfer   = "TRF"
	PrefixDeposit    = "DEP"
	PrefixWithdrawal = "WD"
)

// New returns a fresh reference like "TRF-9F4B2C7A1D3E4F60A1B2C3D4E5F60718".
func New(prefix string) string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(len(prefix) + 1 + 32)
	b.WriteString(prefix)
	b.WriteByte('-')

	const hexDigits = "0123456789ABCDEF"
	for _, octet := range id {
		b.WriteByte(hexDigits[octet>>4])
		b.WriteByte(hexDigits[octet&0x0f])
	}
	return b.String()
}
