// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me> / Vlah Software House SRL

// Package serial generates certificate serial numbers.
package serial

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const randomChars = 5

// New returns a serial number of the form CERT-<timestamp>-<random> where
// the timestamp is the issue instant in milliseconds encoded base36 and the
// random part is 5 base36 characters. The whole serial is uppercase.
// Uniqueness is ultimately enforced by the database; the random suffix just
// makes collisions within the same millisecond unlikely.
func New(t time.Time) string {
	ts := strconv.FormatInt(t.UnixMilli(), 36)

	buf := make([]byte, randomChars)
	rand.Read(buf)

	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffix := make([]byte, randomChars)
	for i, b := range buf {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}

	return strings.ToUpper(fmt.Sprintf("CERT-%s-%s", ts, suffix))
}
