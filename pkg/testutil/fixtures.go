package testutil

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/pkg/config"
)

// ICAO 9303 specimen documents, already clean.
const (
	SpecimenPassport = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10"
	SpecimenIDCard = "I<UTOD231458907<<<<<<<<<<<<<<<\n" +
		"7408122F1204159UTO<<<<<<<<<<<6\n" +
		"ERIKSSON<<ANNA<MARIA<<<<<<<<<<"
	SpecimenTravelDocument = "I<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<\n" +
		"D231458907UTO7408122F1204159<<<<<<<6"
	SpecimenVisaA = "V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L8988901C4XXX4009078F96121096ZE184226B<<<<<<"
	SpecimenVisaB = "V<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<\n" +
		"L8988901C4XXX4009078F9612109<<<<<<<<"

	// SpecimenPassportBadDigits has every check digit wrong.
	SpecimenPassportBadDigits = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C33UTO7408127F1204151ZE184226B<<<<<17"
	// SpecimenPassportBadSex carries Q in the sex column.
	SpecimenPassportBadSex = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C36UTO7408122Q1204159ZE184226B<<<<<10"
	// SpecimenPassportZeroO has the document number X0O123456 misread as
	// XO0123456; its check digit only holds after repair.
	SpecimenPassportZeroO = "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"XO01234560UTO7408122F1204159ZE184226B<<<<<12"
	// SpecimenHungarianIDCard is a TD1 card from the gated issuing country.
	SpecimenHungarianIDCard = "I<HUND231458907<<<<<<<<<<<<<<<\n" +
		"7408122F1204159HUN<<<<<<<<<<<6\n" +
		"ERIKSSON<<ANNA<MARIA<<<<<<<<<<"
)

// NoisyOCR surrounds a specimen with the blanks and blank lines a recognizer
// returns. The leading noise holds no document marker.
func NoisyOCR(specimen string) string {
	rows := strings.Split(specimen, "\n")
	return "ocr: " + strings.Join(rows, " \r\n\n") + "\n"
}

// FrameFixture builds recognizer frames for tests
type FrameFixture struct {
	Text       string
	FullText   string
	CapturedAt time.Time
}

// NewFrame returns a frame carrying text, captured now
func NewFrame(text string) FrameFixture {
	return FrameFixture{Text: text, FullText: text, CapturedAt: time.Now()}
}

// WithFullText sets the full-frame text used for keyword gating
func (f FrameFixture) WithFullText(s string) FrameFixture {
	f.FullText = s
	return f
}

// At sets the capture time
func (f FrameFixture) At(t time.Time) FrameFixture {
	f.CapturedAt = t
	return f
}

// Build returns the domain frame
func (f FrameFixture) Build() domain.Frame {
	return domain.Frame{Text: f.Text, FullText: f.FullText, CapturedAt: f.CapturedAt}
}

// ScannerConfig returns scanner settings matching the service defaults
func ScannerConfig() config.ScannerConfig {
	return config.ScannerConfig{
		SessionTTL:         10 * time.Minute,
		AnalyzeWindow:      5 * time.Second,
		MaxSessionDuration: 2 * time.Minute,
		GatedPrefix:        "I<HUN",
		RequiredKeywords:   []string{"Anyja|anyja|Mother|mother", "hely|place|Hely|Place"},
		FingerprintKey:     "test-fingerprint-key",
	}
}

// NewSession returns a scanning session started at startedAt
func NewSession(startedAt time.Time) *domain.ScanSession {
	return &domain.ScanSession{
		ID:               uuid.NewString(),
		UserID:           uuid.NewString(),
		Status:           domain.StatusScanning,
		StartedAt:        startedAt,
		ConsentTimestamp: startedAt,
	}
}
