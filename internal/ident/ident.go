// Package ident generates the random identifiers used as entity keys:
// user IDs are short digit strings, product IDs are long digit strings, and
// order IDs are uppercase alphanumeric codes.
//
// Generation is collision-oblivious on purpose. Callers insert under a unique
// constraint and regenerate when the insert reports a conflict, so the
// constraint itself is the collision check — there is no racy
// generate/look-up/insert window. The retry cap lives with the callers.
package ident

import (
	"fmt"
	"math/rand"
	"strings"
)

// Standard lengths used across the app, matching the seeded dataset.
const (
	UserIDLength    = 6
	OrderIDLength   = 8
	ProductIDLength = 13
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Numeric returns a string of exactly length decimal digits with a non-zero
// first digit, i.e. a value uniform over [10^(length-1), 10^length - 1].
// Building it digit by digit keeps any length representable — no integer
// overflow cap.
func Numeric(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("ident: length must be >= 1, got %d", length)
	}

	var b strings.Builder
	b.Grow(length)

	// First digit 1-9 so the value never shortens under numeric parsing.
	b.WriteByte(digits[1+rand.Intn(9)])
	for i := 1; i < length; i++ {
		b.WriteByte(digits[rand.Intn(len(digits))])
	}
	return b.String(), nil
}

// Alphanumeric returns a string of exactly length characters drawn uniformly
// (with replacement) from uppercase letters and digits.
func Alphanumeric(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("ident: length must be >= 1, got %d", length)
	}

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphanumeric[rand.Intn(len(alphanumeric))])
	}
	return b.String(), nil
}
