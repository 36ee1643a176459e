package mrz

// DocumentCode classifies the document from its leading MRZ characters.
type DocumentCode string

const (
	DocumentCodePassport   DocumentCode = "Passport"
	DocumentCodeTypeI      DocumentCode = "TypeI"
	DocumentCodeTypeA      DocumentCode = "TypeA"
	DocumentCodeCrewMember DocumentCode = "CrewMember"
	DocumentCodeTypeC      DocumentCode = "TypeC"
	DocumentCodeTypeV      DocumentCode = "TypeV"
	DocumentCodeMigrant    DocumentCode = "Migrant"
)

// ParseDocumentCode inspects the first two characters of text. Two-letter
// codes take precedence over the one-letter fallback; IV is not allowed.
func ParseDocumentCode(text string) (DocumentCode, error) {
	code := text
	if len(code) > 2 {
		code = code[:2]
	}
	where := rng(0, 2, 0)

	switch code {
	case "IV":
		return "", &ParseError{Err: ErrUnsupportedDocumentCode, Message: "IV document code is not allowed", Range: &where}
	case "AC":
		return DocumentCodeCrewMember, nil
	case "ME", "TD":
		return DocumentCodeMigrant, nil
	case "IP":
		return DocumentCodePassport, nil
	}

	if code != "" {
		switch code[0] {
		case 'T', 'P':
			return DocumentCodePassport, nil
		case 'A':
			return DocumentCodeTypeA, nil
		case 'C':
			return DocumentCodeTypeC, nil
		case 'V':
			return DocumentCodeTypeV, nil
		case 'I':
			return DocumentCodeTypeI, nil
		case 'R':
			return DocumentCodeMigrant, nil
		}
	}

	return "", &ParseError{Err: ErrUnsupportedDocumentCode, Message: "unsupported document code: " + code, Range: &where}
}
