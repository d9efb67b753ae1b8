// Package symbol maps heterogeneous derivative-instrument symbol strings to
// a canonical grouping key (underlying + expiry month/year + kind).
package symbol

import (
	"regexp"
	"strings"
	"unicode"
)

// Kind classifies the instrument.
type Kind string

const (
	// KindFuture covers futures and anything not recognisably an option.
	KindFuture Kind = "FUT"
	// KindOption covers CE/PE option legs.
	KindOption Kind = "OPT"
)

// Parsed is the canonical decomposition of a raw symbol. Month and Year are
// empty when no expiry could be extracted; both are set or both are empty.
type Parsed struct {
	Underlying string
	Month      string
	Year       string
	Kind       Kind
}

// KeyOptions controls canonical key construction.
type KeyOptions struct {
	IncludeKind bool
}

var monthCodes = map[string]struct{}{
	"JAN": {}, "FEB": {}, "MAR": {}, "APR": {}, "MAY": {}, "JUN": {},
	"JUL": {}, "AUG": {}, "SEP": {}, "OCT": {}, "NOV": {}, "DEC": {},
}

const monthAlternation = "JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC"

var (
	// 28-NOV-2024, 28NOV2024, 28 SEPT 2024; month may carry trailing letters.
	dayMonthYearRe = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})[ \-_/]?(` + monthAlternation + `)[A-Z]*[ \-_/]?(\d{4})(?:[^0-9]|$)`)
	// NOV-2024, NOV2024, SEPT 2024.
	monthYearRe = regexp.MustCompile(`(` + monthAlternation + `)[A-Z]*[ \-_/]?(\d{4})(?:[^0-9]|$)`)

	yearTokenRe = regexp.MustCompile(`^\d{4}$`)
	dayTokenRe  = regexp.MustCompile(`^\d{1,2}$`)
	// Token that opens with an optional day and a month code, e.g. NOV2024,
	// NOVEMBER, 28NOV2024. Such a token ends the underlying.
	monthLeadRe = regexp.MustCompile(`^(?:\d{1,2})?(` + monthAlternation + `)`)

	nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]+`)
)

// Parse decomposes a raw instrument symbol. It never panics; unparseable
// inputs yield an empty expiry and KindFuture.
func Parse(raw string) Parsed {
	normalized := normalize(raw)
	tokens := tokenize(normalized)

	parsed := Parsed{
		Underlying: extractUnderlying(tokens),
		Month:      "",
		Year:       "",
		Kind:       classifyKind(tokens),
	}
	parsed.Month, parsed.Year = extractExpiry(normalized)
	return parsed
}

// Key returns the canonical grouping key for raw. When an expiry resolved,
// the key is "<underlying>-<MON><YYYY>"; otherwise it degrades to the
// sanitized literal of the whole symbol, so two differently formatted
// unparsed symbols are not guaranteed to collide.
func Key(raw string, opts KeyOptions) string {
	normalized := normalize(raw)
	parsed := Parse(raw)

	base := sanitize(normalized)
	if parsed.Underlying != "" && parsed.Month != "" && parsed.Year != "" {
		base = parsed.Underlying + "-" + parsed.Month + parsed.Year
	}
	if opts.IncludeKind {
		base += "-" + string(parsed.Kind)
	}
	return base
}

// normalize uppercases, folds all Unicode space variants to plain spaces,
// folds em/en dashes to hyphens, and collapses repeated whitespace.
func normalize(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r == '–' || r == '—' || r == '−':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return collapsed
}

func tokenize(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '/'
	})
}

// extractUnderlying accumulates leading tokens until an expiry or tail-flag
// token. A bare 1-2 digit token directly before the break is a detached
// day-of-month and is dropped from the underlying.
func extractUnderlying(tokens []string) string {
	kept := make([]string, 0, len(tokens))
	broke := false
	for _, tok := range tokens {
		if breaksUnderlying(tok) {
			broke = true
			break
		}
		kept = append(kept, tok)
	}
	if broke && len(kept) > 0 && dayTokenRe.MatchString(kept[len(kept)-1]) {
		kept = kept[:len(kept)-1]
	}
	return sanitize(strings.Join(kept, ""))
}

func breaksUnderlying(tok string) bool {
	switch tok {
	case "FUT", "OPT", "CE", "PE":
		return true
	}
	if yearTokenRe.MatchString(tok) {
		return true
	}
	return monthLeadRe.MatchString(tok)
}

// extractExpiry tries the combined day-month-year form first, then the bare
// month-year form. Month variants longer than three letters (SEPT, MARCH)
// fold to the standard three-letter code.
func extractExpiry(normalized string) (month, year string) {
	if m := dayMonthYearRe.FindStringSubmatch(normalized); m != nil {
		return m[2], m[3]
	}
	if m := monthYearRe.FindStringSubmatch(normalized); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

func classifyKind(tokens []string) Kind {
	for _, tok := range tokens {
		if tok == "CE" || tok == "PE" {
			return KindOption
		}
	}
	return KindFuture
}

func sanitize(s string) string {
	return nonAlnumRe.ReplaceAllString(s, "")
}

// MonthCode reports whether code is one of the twelve standard three-letter
// expiry month codes.
func MonthCode(code string) bool {
	_, ok := monthCodes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
