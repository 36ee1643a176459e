package processor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/docprocessing/processor"
	"github.com/medflow/mrz-scanner/internal/mrz"
	"github.com/medflow/mrz-scanner/pkg/logger"
	"github.com/medflow/mrz-scanner/pkg/testutil"
)

func newProcessor() *processor.MRZProcessor {
	return processor.NewMRZProcessor(processor.NewGate(testutil.ScannerConfig()), logger.Nop())
}

func fieldMap(fields []domain.ExtractionField) map[string]domain.ExtractionField {
	m := make(map[string]domain.ExtractionField, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}

func TestMRZProcessor_Name(t *testing.T) {
	assert.Equal(t, "mrz", newProcessor().Name())
}

func TestMRZProcessor_Passport(t *testing.T) {
	p := newProcessor()
	session := testutil.NewSession(time.Now())
	frame := testutil.NewFrame(testutil.NoisyOCR(testutil.SpecimenPassport)).Build()

	result, err := p.Process(context.Background(), mrz.NewCleaner(), session, frame)
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypePassport, result.DocumentType)
	require.NotNil(t, result.Scanner)
	assert.Equal(t, testutil.SpecimenPassport, result.Scanner.MRZ)
	assert.Equal(t, "MRP", result.Scanner.Format)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))

	fields := fieldMap(result.Fields)
	assert.Equal(t, domain.ExtractionField{Key: "document_number", Value: "L898902C3", Verified: true, Source: domain.DocumentTypePassport}, fields["document_number"])
	assert.Equal(t, "740812", fields["date_of_birth"].Value)
	assert.True(t, fields["date_of_birth"].Verified)
	assert.Equal(t, "ZE184226B", fields["personal_number"].Value)
	assert.True(t, fields["personal_number"].Verified)
	assert.Equal(t, "ERIKSSON", fields["surname"].Value)
	assert.False(t, fields["surname"].Verified)
}

func TestMRZProcessor_IDCardOmitsEmptyFields(t *testing.T) {
	p := newProcessor()
	session := testutil.NewSession(time.Now())

	result, err := p.Process(context.Background(), mrz.NewCleaner(), session, testutil.NewFrame(testutil.SpecimenIDCard).Build())
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypeIDCard, result.DocumentType)
	assert.Equal(t, []string{
		"document_number", "surname", "given_names", "date_of_birth",
		"sex", "expiration_date", "nationality", "issuing_country",
	}, result.FieldKeys())
}

func TestMRZProcessor_RepairedDocumentNumber(t *testing.T) {
	p := newProcessor()
	session := testutil.NewSession(time.Now())

	result, err := p.Process(context.Background(), mrz.NewCleaner(), session, testutil.NewFrame(testutil.SpecimenPassportZeroO).Build())
	require.NoError(t, err)

	assert.True(t, result.Scanner.Repaired)
	assert.Equal(t, "X0O123456", result.Scanner.DocumentNumber)
}

func TestMRZProcessor_Errors(t *testing.T) {
	tests := []struct {
		name    string
		frame   domain.Frame
		wantErr error
	}{
		{
			name:    "not an MRZ",
			frame:   testutil.NewFrame("hello world").Build(),
			wantErr: mrz.ErrMalformedInput,
		},
		{
			name:    "bad check digits",
			frame:   testutil.NewFrame(testutil.SpecimenPassportBadDigits).Build(),
			wantErr: mrz.ErrAcceptance,
		},
		{
			name:    "bad sex character",
			frame:   testutil.NewFrame(testutil.SpecimenPassportBadSex).Build(),
			wantErr: mrz.ErrInvalidSexChar,
		},
		{
			name:    "gated card without keywords",
			frame:   testutil.NewFrame(testutil.SpecimenHungarianIDCard).Build(),
			wantErr: processor.ErrGateRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := testutil.NewSession(time.Now())
			_, err := newProcessor().Process(context.Background(), mrz.NewCleaner(), session, tt.frame)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMRZProcessor_GatedCardAfterWindow(t *testing.T) {
	started := time.Now().Add(-time.Minute)
	session := testutil.NewSession(started)
	frame := testutil.NewFrame(testutil.SpecimenHungarianIDCard).At(time.Now()).Build()

	result, err := newProcessor().Process(context.Background(), mrz.NewCleaner(), session, frame)
	require.NoError(t, err)
	assert.Equal(t, "HUN", result.Scanner.IssuingCountry)
}

func TestMRZProcessor_RemembersRejectedFrame(t *testing.T) {
	cleaner := mrz.NewCleaner()
	session := testutil.NewSession(time.Now())
	frame := testutil.NewFrame(testutil.SpecimenPassportBadDigits).Build()
	p := newProcessor()

	_, err := p.Process(context.Background(), cleaner, session, frame)
	var first *mrz.AcceptanceError
	require.True(t, errors.As(err, &first))
	assert.False(t, first.Repeated)

	_, err = p.Process(context.Background(), cleaner, session, frame)
	var second *mrz.AcceptanceError
	require.True(t, errors.As(err, &second))
	assert.True(t, second.Repeated)
	assert.Equal(t, testutil.SpecimenPassportBadDigits, cleaner.Previous())
}

func TestMRZProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newProcessor().Process(ctx, mrz.NewCleaner(), testutil.NewSession(time.Now()), testutil.NewFrame(testutil.SpecimenPassport).Build())
	assert.ErrorIs(t, err, context.Canceled)
}
