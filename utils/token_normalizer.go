package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// A comma followed by exactly three digits is a thousands separator; any
// other comma inside a number is Tesseract misreading a decimal point.
var thousandsComma = regexp.MustCompile(`,(\d{3})(?:\D|$)`)

// gluedLabel matches a word label OCR fused to its value, as in "Index:100.00".
var gluedLabel = regexp.MustCompile(`^(\pL+[:=])(\S*\d\S*)$`)

// SplitFragments breaks an OCR text blob into whitespace-separated fragments
// in reading order.
func SplitFragments(text string) []string {
	return strings.Fields(text)
}

// SplitGluedLabels separates "<label>:<number>" fragments into the label and
// the number so keyword lookups still see the label.
func SplitGluedLabels(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if m := gluedLabel.FindStringSubmatch(f); m != nil {
			out = append(out, m[1], m[2])
			continue
		}
		out = append(out, f)
	}
	return out
}

// NormalizeTokens cleans OCR noise from every fragment while keeping the
// sequence length and order intact. Decimal points and percent signs are the
// only markers the offer parser relies on, so they always survive.
func NormalizeTokens(raw []string) []string {
	out := make([]string, len(raw))
	for i, tok := range raw {
		out[i] = normalizeToken(tok)
	}
	return out
}

func normalizeToken(tok string) string {
	if !containsDigit(tok) {
		return tok
	}

	t := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, tok)

	t = normalizeCommas(t)

	negative := hasLeadingMinus(t)
	t = strings.TrimLeftFunc(t, func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	t = strings.TrimRightFunc(t, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '%'
	})

	if negative {
		return "-" + t
	}
	return t
}

// hasLeadingMinus reports whether the first digit is directly preceded by a
// '-' that is not glued to a letter ("Price-95" is a separator, "(-95" a sign).
func hasLeadingMinus(t string) bool {
	idx := strings.IndexFunc(t, unicode.IsDigit)
	if idx < 1 || t[idx-1] != '-' {
		return false
	}
	if idx == 1 {
		return true
	}
	prev := []rune(t[:idx-1])
	return !unicode.IsLetter(prev[len(prev)-1])
}

func normalizeCommas(t string) string {
	if !strings.Contains(t, ",") {
		return t
	}
	for thousandsComma.MatchString(t) {
		t = thousandsComma.ReplaceAllStringFunc(t, func(m string) string {
			return m[1:]
		})
	}
	if strings.Contains(t, ".") {
		return strings.ReplaceAll(t, ",", "")
	}
	return strings.Replace(t, ",", ".", 1)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
