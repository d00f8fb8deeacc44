// Package idgen generates account ids, event ids and account numbers.
package idgen

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/iho/bankcore/internal/domain"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// NumberAllocator draws random account numbers of domain.AccountNumberLength digits.
// Uniqueness is enforced by the account store.
type NumberAllocator struct{}

// NewNumberAllocator creates a new NumberAllocator.
func NewNumberAllocator() *NumberAllocator {
	return &NumberAllocator{}
}

var ten = big.NewInt(10)

// Allocate returns a candidate account number.
func (a *NumberAllocator) Allocate() (string, error) {
	var b strings.Builder
	b.Grow(domain.AccountNumberLength)

	for range domain.AccountNumberLength {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}

	return b.String(), nil
}
