package mrz

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var expandLetters = strings.NewReplacer(
	"Ä", "AE", "ä", "AE",
	"Å", "AA", "å", "AA",
	"Æ", "AE", "æ", "AE",
	"Ĳ", "IJ", "ĳ", "IJ",
	"Ö", "OE", "ö", "OE",
	"Ø", "OE", "ø", "OE",
	"Ü", "UE", "ü", "UE",
	"ß", "SS",
	"'", "", "’", "",
)

// restoreLetters undoes digit-for-letter OCR confusions in text fields.
var restoreLetters = strings.NewReplacer("0", "O", "1", "I", "8", "B", "5", "S", "2", "Z", "3", "J")

// RestoreLetters replaces digits that OCR commonly reads in place of letters.
// It is meant for name and country fields, which never contain digits.
func RestoreLetters(s string) string {
	return restoreLetters.Replace(s)
}

// ToMrz converts arbitrary text to the MRZ alphabet. Letters with a known
// MRZ spelling are expanded, other diacritics are dropped and anything
// outside [A-Z0-9] becomes a filler. A non-negative length truncates or pads
// the result to exactly that many characters.
func ToMrz(text string, length int) string {
	text = expandLetters.Replace(text)
	// transform chains keep state and are built per call.
	deaccent := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if s, _, err := transform.String(deaccent, text); err == nil {
		text = s
	}
	text = strings.ToUpper(text)

	out := make([]byte, 0, max(length, len(text)))
	for _, r := range text {
		if length >= 0 && len(out) == length {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, byte(r))
		} else {
			out = append(out, Filler)
		}
	}
	for len(out) < length {
		out = append(out, Filler)
	}
	return string(out)
}

// NameToMrz renders SURNAME<<GIVEN<NAMES in exactly length characters. When
// the name does not fit, given names are shortened first, rightmost word
// first and one character at a time down to an initial, then the surname
// words the same way.
func NameToMrz(surname, givenNames string, length int) (string, error) {
	if length <= 0 {
		return "", invalidArgument("parameter length: invalid value %d: not positive", length)
	}
	surnames := mrzWords(surname)
	given := mrzWords(givenNames)

	size := 0
	for _, w := range surnames {
		size += len(w) + 1
	}
	for _, w := range given {
		size += len(w) + 1
	}

	for size > length {
		if !shortenLast(given) && !shortenLast(surnames) {
			return "", invalidArgument("cannot fit name %q %q into %d characters", surname, givenNames, length)
		}
		size--
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(surnames, "<"))
	sb.WriteByte(Filler)
	for _, w := range given {
		sb.WriteByte(Filler)
		sb.WriteString(w)
	}
	return ToMrz(sb.String(), length), nil
}

func mrzWords(s string) []string {
	fields := strings.Fields(strings.ReplaceAll(s, ", ", " "))
	for i, f := range fields {
		fields[i] = ToMrz(f, -1)
	}
	return fields
}

// shortenLast drops one character from the rightmost word longer than one
// character.
func shortenLast(words []string) bool {
	for i := len(words) - 1; i >= 0; i-- {
		if len(words[i]) > 1 {
			words[i] = words[i][:len(words[i])-1]
			return true
		}
	}
	return false
}
