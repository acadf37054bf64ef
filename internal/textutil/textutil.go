// internal/textutil/textutil.go

// Package textutil provides pure text processing helpers: entity extraction
// (emails, phone numbers, hashtags), compact count parsing and whitespace
// normalization. No I/O happens here.
package textutil

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	emailRe   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe   = regexp.MustCompile(`\+?\d[\d\s().\-]{8,}\d`)
	hashtagRe = regexp.MustCompile(`#[\p{L}\p{N}_]+`)
	spaceRe   = regexp.MustCompile(`\s+`)
	compactRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([kmb])?$`)
)

// Entities holds the structured entities found in a block of text. Slices are
// always non-nil.
type Entities struct {
	Emails   []string `json:"emails"`
	Phones   []string `json:"phones"`
	Hashtags []string `json:"hashtags"`
}

// ExtractEntities scans text for email addresses, phone numbers and hashtags.
// Matching is tolerant rather than exhaustive; duplicates are removed while
// preserving first-seen order.
func ExtractEntities(text string) Entities {
	entities := Entities{
		Emails:   []string{},
		Phones:   []string{},
		Hashtags: []string{},
	}
	if text == "" {
		return entities
	}

	entities.Emails = Dedupe(emailRe.FindAllString(text, -1))
	entities.Phones = Dedupe(phoneRe.FindAllString(text, -1))
	entities.Hashtags = Dedupe(hashtagRe.FindAllString(text, -1))

	return entities
}

// CompactToInt parses compact count notation ("12.3K", "1.2M", "1,234", plain
// digits) into an integer. The second return value is false when the input is
// not parseable; it never panics.
func CompactToInt(s string) (int64, bool) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.ReplaceAll(t, ",", "")
	if t == "" {
		return 0, false
	}

	m := compactRe.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}

	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch m[2] {
	case "k":
		num *= 1_000
	case "m":
		num *= 1_000_000
	case "b":
		num *= 1_000_000_000
	}

	return int64(num), true
}

// NormalizeWhitespace collapses runs of whitespace (including non-breaking
// spaces) to single spaces, trims the ends and applies Unicode NFC so that
// visually identical strings compare equal. Used before every text comparison
// or storage.
func NormalizeWhitespace(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Dedupe removes duplicate strings while preserving first-seen order. Empty
// strings are dropped. The result is never nil.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Union merges two string lists as a set, preserving the first-seen order
// across both inputs.
func Union(a, b []string) []string {
	return Dedupe(append(append([]string{}, a...), b...))
}
