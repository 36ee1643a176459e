package mrz

import "fmt"

// Filler is the MRZ padding and separator character.
const Filler = '<'

var weights = [3]int{7, 3, 1}

func charValue(c byte) (int, bool) {
	switch {
	case c == Filler:
		return 0, true
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isValidChar(c byte) bool {
	_, ok := charValue(c)
	return ok
}

// ComputeCheckDigit computes the ICAO 9303 check digit (weights 7,3,1,
// modulo 10) of s. It fails only for characters outside the MRZ alphabet.
func ComputeCheckDigit(s string) (int, error) {
	sum := 0
	for i := 0; i < len(s); i++ {
		v, ok := charValue(s[i])
		if !ok {
			return 0, invalidArgument("invalid character in MRZ record: %q", s[i])
		}
		sum += v * weights[i%len(weights)]
	}
	return sum % 10, nil
}

// CheckDigitChar is ComputeCheckDigit rendered as the MRZ character.
func CheckDigitChar(s string) (string, error) {
	d, err := ComputeCheckDigit(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(d), nil
}

// withCheckDigit returns s followed by its check digit.
func withCheckDigit(s string) (string, error) {
	d, err := CheckDigitChar(s)
	if err != nil {
		return "", err
	}
	return s + d, nil
}
