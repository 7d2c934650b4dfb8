package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/pquerna/otp"
)

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric draws uniformly distributed six digit codes from crypto/rand.
type Numeric struct {
	digits otp.Digits
	min    int64
	span   *big.Int
	rand   io.Reader
}

// NewNumeric builds a six digit generator. With allowLeadingZero the range is
// [000000, 999999]; otherwise it is [100000, 999999].
func NewNumeric(allowLeadingZero bool) *Numeric {
	n := &Numeric{digits: otp.DigitsSix, rand: rand.Reader}

	upper := int64(1_000_000)
	if !allowLeadingZero {
		n.min = 100_000
	}
	n.span = big.NewInt(upper - n.min)

	return n
}

// Generate returns a fresh code, zero padded to six digits.
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.span)
	if err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return n.digits.Format(int32(v.Int64() + n.min)), nil
}

// Length is the number of digits in every generated code.
func (n *Numeric) Length() int {
	return n.digits.Length()
}
