package mrz

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

const (
	documentMarkers = "PIACV"

	// Texts longer than these limits carry trailing OCR garbage and are cut.
	twoRowLimit   = 89
	twoRowCut     = 88
	threeRowLimit = 92
	threeRowCut   = 91
)

var (
	leadingNoise   = regexp.MustCompile(`^[^PIACV]*`)
	blanks         = regexp.MustCompile(`[ \t\r]+`)
	newlines       = regexp.MustCompile(`\n+`)
	passportPrefix = regexp.MustCompile(`^P[KC]`)
	nonMrzAlphabet = regexp.MustCompile(`[^A-Z0-9<\n]`)

	// separatorGlyphs are applied in order, each one over the whole text.
	separatorGlyphs = [][2]string{
		{"«", "<"},
		{"<c<", "<<<"},
		{"<e<", "<<<"},
		{"<E<", "<<<"},
		{"<K<", "<<<"},
		{"<S<", "<<<"},
		{"<C<", "<<<"},
		{"<¢<", "<<<"},
		{"<(<", "<<<"},
		{"<{<", "<<<"},
		{"<[<", "<<<"},
	}
)

// Clean normalizes raw OCR output into MRZ text: noise before the document
// marker, blanks and characters outside the MRZ alphabet are removed and
// common misreads of the filler are fixed. It fails with ErrMalformedInput
// when the result is not two or three rows starting with a document marker.
// Cleaning already cleaned text returns it unchanged.
func Clean(raw string) (string, error) {
	// Removing a character or fixing a separator can expose another
	// separator misread, so normalize until nothing changes.
	s := normalize(raw)
	for next := normalize(s); next != s; next = normalize(s) {
		s = next
	}

	// Cutting can drop a row, so the limit is chosen again after each cut.
	for {
		limit, cut := twoRowLimit, twoRowCut
		switch strings.Count(s, "\n") {
		case 1:
		case 2:
			limit, cut = threeRowLimit, threeRowCut
		default:
			limit = len(s)
		}
		if len(s) <= limit {
			break
		}
		s = strings.TrimRight(s[:cut], "\n")
	}

	if s == "" || !strings.ContainsRune(s, Filler) || !strings.ContainsRune(documentMarkers, rune(s[0])) {
		return "", malformed("invalid MRZ string: no '<' or 'P', 'I', 'A', 'C', 'V' detected")
	}
	if n := strings.Count(s, "\n"); n != 1 && n != 2 {
		return "", malformed("invalid MRZ string: wrong number of lines")
	}
	return s, nil
}

func normalize(s string) string {
	s = leadingNoise.ReplaceAllString(s, "")
	s = blanks.ReplaceAllString(s, "")
	s = newlines.ReplaceAllString(s, "\n")
	for _, g := range separatorGlyphs {
		s = strings.ReplaceAll(s, g[0], g[1])
	}
	s = passportPrefix.ReplaceAllString(s, "P<")
	s = nonMrzAlphabet.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Cleaner accepts or rejects successive OCR frames of one document. It keeps
// the last rejected text, so each concurrent capture needs its own Cleaner.
type Cleaner struct {
	opts     []Option
	log      zerolog.Logger
	previous string
}

// NewCleaner returns a Cleaner whose parses use opts.
func NewCleaner(opts ...Option) *Cleaner {
	return &Cleaner{opts: opts, log: newOptions(opts).log}
}

// Clean is the package level Clean.
func (c *Cleaner) Clean(raw string) (string, error) {
	return Clean(raw)
}

// ParseAndClean parses cleaned text and accepts the record when either every
// individual check digit (document number, birth and expiry date) holds or
// the composite check digit does. Accepted records have digits in name and
// country fields turned back into letters. A rejected record is returned
// inside an *AcceptanceError; the caller should try the next frame.
func (c *Cleaner) ParseAndClean(text string) (Record, error) {
	rec, err := Parse(text, c.opts...)
	if err != nil {
		return nil, err
	}

	b := rec.Base()
	if !Accepted(b) {
		repeated := text == c.previous
		c.previous = text
		c.log.Debug().Bool("repeated", repeated).Msg("check digits rejected, waiting for next frame")
		return nil, &AcceptanceError{Record: rec, Repeated: repeated}
	}

	b.GivenNames = RestoreLetters(b.GivenNames)
	b.Surname = RestoreLetters(b.Surname)
	b.IssuingCountry = RestoreLetters(b.IssuingCountry)
	b.Nationality = RestoreLetters(b.Nationality)
	return rec, nil
}

// Previous returns the last text rejected by ParseAndClean.
func (c *Cleaner) Previous() string {
	return c.previous
}

// Accepted applies the acceptance rule to a parsed record.
func Accepted(c *Common) bool {
	return (c.ValidDateOfBirth && c.ValidDocumentNumber && c.ValidExpirationDate) || c.ValidComposite
}
