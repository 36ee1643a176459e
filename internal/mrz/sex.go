package mrz

// Sex is stored as its MRZ character.
type Sex string

const (
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
	SexUnspecified Sex = "X"
)

// ParseSex maps an MRZ sex cell. Both '<' and 'X' mean unspecified.
func ParseSex(c byte) (Sex, error) {
	switch c {
	case 'M':
		return SexMale, nil
	case 'F':
		return SexFemale, nil
	case Filler, 'X':
		return SexUnspecified, nil
	default:
		return "", &ParseError{Err: ErrInvalidSexChar, Message: "invalid MRZ sex character: " + string(rune(c))}
	}
}

// Label is the human readable name used in scanner results.
func (s Sex) Label() string {
	switch s {
	case SexMale:
		return "Male"
	case SexFemale:
		return "Female"
	default:
		return "Unspecified"
	}
}

// ToMrz returns the MRZ character; anything unknown renders as unspecified.
func (s Sex) ToMrz() string {
	switch s {
	case SexMale, SexFemale:
		return string(s)
	default:
		return string(SexUnspecified)
	}
}
