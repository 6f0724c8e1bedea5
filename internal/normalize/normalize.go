package normalize

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	numberRe     = regexp.MustCompile(`\d[\d.,]*`)

	datePatterns = []struct {
		re      *regexp.Regexp
		reorder func(m []string) string
	}{
		{
			// YYYY-MM-DD
			re:      regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`),
			reorder: func(m []string) string { return m[1] + "-" + m[2] + "-" + m[3] },
		},
		{
			// MM/DD/YYYY
			re:      regexp.MustCompile(`(\d{2})/(\d{2})/(\d{4})`),
			reorder: func(m []string) string { return m[3] + "-" + m[1] + "-" + m[2] },
		},
		{
			// DD.MM.YYYY
			re:      regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`),
			reorder: func(m []string) string { return m[3] + "-" + m[2] + "-" + m[1] },
		},
	}
)

// CleanText collapses whitespace runs (including newlines and carriage
// returns) to single spaces and trims the result. Output-format escaping
// is left to the writer; encoding/csv quotes fields itself, which keeps
// this function idempotent.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// ExtractNumber pulls the first numeric token out of free text such as
// a price or rating label. When both comma and period appear the comma
// is treated as a thousands separator; a lone comma is treated as the
// decimal point. Returns false when the text carries no digits.
func ExtractNumber(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}

	cleaned := numberRe.FindString(text)
	if cleaned == "" {
		return 0, false
	}
	cleaned = strings.Trim(cleaned, ".,")

	switch {
	case strings.Count(cleaned, ",") > 1 || strings.Contains(cleaned, "."):
		// Commas are thousands separators.
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case strings.Contains(cleaned, ","):
		// A lone comma is a decimal point.
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}

// NormalizeRating converts a raw rating string into a displayable value:
// a parsed number rounded to one decimal place, a star-glyph count when
// no numeral is present, or the raw text as last resort.
func NormalizeRating(text string) string {
	if text == "" {
		return "N/A"
	}

	if value, ok := ExtractNumber(text); ok {
		return strconv.FormatFloat(math.Round(value*10)/10, 'f', 1, 64)
	}

	stars := strings.Count(text, "★") + strings.Count(text, "⭐")
	if stars > 0 {
		return strconv.Itoa(stars)
	}

	return text
}

// NormalizeDate re-emits the first recognized date pattern as canonical
// YYYY-MM-DD. Unrecognized input is returned unchanged; the result is
// advisory for ambiguous locales.
func NormalizeDate(text string) string {
	if text == "" {
		return "N/A"
	}

	for _, p := range datePatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return p.reorder(m)
		}
	}

	return text
}

// ReviewID computes the deterministic review identifier: the first 12
// hex characters of an MD5 digest over the concatenated fields. The same
// inputs always produce the same id, which is the deduplication key.
func ReviewID(reviewerName, reviewText, date, productURL string) string {
	sum := md5.Sum([]byte(reviewerName + reviewText + date + productURL))
	return hex.EncodeToString(sum[:])[:12]
}
