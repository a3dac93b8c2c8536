// Package captcha implements the login form's local CAPTCHA: a short random
// code rendered next to the form and checked before anything is sent to the
// server. It is a UI deterrent only. Codes come from a non-cryptographic
// source and nothing binds them to the server.
package captcha

import (
	"math/rand/v2"
	"strings"
	"sync"
)

const (
	// Alphabet holds the 36 symbols a code is drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of symbols in a code.
	Length = 4
)

// Source yields uniformly distributed integers in [0, n).
type Source interface {
	IntN(n int) int
}

// Generate draws Length independent symbols uniformly from Alphabet. A nil
// src uses the global math/rand/v2 generator.
func Generate(src Source) string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		var n int
		if src == nil {
			n = rand.IntN(len(Alphabet))
		} else {
			n = src.IntN(len(Alphabet))
		}
		b.WriteByte(Alphabet[n])
	}
	return b.String()
}

// Match compares a typed answer against a code, ignoring case.
func Match(code, input string) bool {
	return code != "" && strings.EqualFold(code, input)
}

// Challenge is the CAPTCHA state of one form instance. A fresh code is drawn
// when the challenge is created and again after every failed check.
type Challenge struct {
	src Source

	mu   sync.Mutex
	code string
}

// New creates a challenge with its first code already drawn.
func New(src Source) *Challenge {
	c := &Challenge{src: src}
	c.code = Generate(src)
	return c
}

// Code returns the code currently displayed.
func (c *Challenge) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// Refresh draws a new code, e.g. when the user asks for a different one.
func (c *Challenge) Refresh() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code = Generate(c.src)
	return c.code
}

// Check reports whether input matches the displayed code. On mismatch a new
// code replaces the old one.
func (c *Challenge) Check(input string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if Match(c.code, input) {
		return true
	}
	c.code = Generate(c.src)
	return false
}
