package services

import "strings"

// NormalizePhone canonicalizes a raw phone number to the local leading-zero
// form so the same person is never stored twice under different formats.
// It never fails: input that doesn't look like a Vietnamese number is
// returned stripped but otherwise unmodified, since the phone is only a
// dedup key and is not validated elsewhere.
func NormalizePhone(raw string) string {
	stripped := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.', '\t':
			return -1
		}
		return r
	}, raw)

	switch {
	case strings.HasPrefix(stripped, "+84"):
		return "0" + stripped[3:]
	case strings.HasPrefix(stripped, "84") && len(stripped) >= 10:
		return "0" + stripped[2:]
	}
	return stripped
}
