// Package ids allocates the human-readable codes used as primary keys.
//
// Sequential codes (BH001, BD002, ...) continue from the greatest existing code
// with the same prefix. Question and answer codes are a prefix plus random hex.
package ids

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Prefixes for sequential codes.
const (
	PrefixUser      = "ND"
	PrefixLesson    = "BH"
	PrefixReading   = "BD"
	PrefixListening = "BN"
	PrefixWriting   = "BV"
	PrefixVideo     = "VD"
)

// Prefixes for random codes.
const (
	PrefixReadingQuestion   = "CHD"
	PrefixListeningQuestion = "CHN"
	PrefixAnswer            = "DA"
)

// RandomLength is the total length of a random code.
const RandomLength = 10

const minDigits = 3

// Next returns the code following last. An empty or foreign last starts the sequence at 1.
// The width never shrinks: BH0009 is followed by BH0010, BH999 by BH1000.
func Next(last, prefix string) string {
	digits := minDigits
	if last != "" && len(last)-len(prefix) > digits {
		digits = len(last) - len(prefix)
	}

	next := 1
	if strings.TrimSpace(last) != "" && len(last) >= len(prefix) && strings.EqualFold(last[:len(prefix)], prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, digits, next)
}

// Random returns prefix followed by uppercase hex, RandomLength characters in total.
// Prefixes longer than RandomLength are cut; at least one random character is kept.
func Random(prefix string) string {
	if prefix == "" {
		prefix = "CH"
	}
	if len(prefix) > RandomLength {
		prefix = prefix[:RandomLength]
	}
	remaining := RandomLength - len(prefix)
	if remaining < 1 {
		prefix = prefix[:RandomLength-1]
		remaining = 1
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(suffix[:remaining])
}
