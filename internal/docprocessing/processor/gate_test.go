package processor_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medflow/mrz-scanner/internal/docprocessing/processor"
	"github.com/medflow/mrz-scanner/pkg/testutil"
)

func TestGate_Check(t *testing.T) {
	gate := processor.NewGate(testutil.ScannerConfig())
	start := time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)
	inWindow := start.Add(2 * time.Second)
	late := start.Add(6 * time.Second)

	tests := []struct {
		name     string
		cleaned  string
		fullText string
		at       time.Time
		wantErr  bool
	}{
		{
			name:    "other issuing country",
			cleaned: testutil.SpecimenIDCard,
			at:      inWindow,
		},
		{
			name:    "gated prefix without keywords",
			cleaned: testutil.SpecimenHungarianIDCard,
			at:      inWindow,
			wantErr: true,
		},
		{
			name:     "gated prefix with only one group",
			cleaned:  testutil.SpecimenHungarianIDCard,
			fullText: "Anyja neve: MINTA JULIANNA",
			at:       inWindow,
			wantErr:  true,
		},
		{
			name:     "gated prefix with every group",
			cleaned:  testutil.SpecimenHungarianIDCard,
			fullText: "Anyja neve: MINTA JULIANNA\nSzuletesi hely / Place of birth: BUDAPEST",
			at:       inWindow,
		},
		{
			name:     "english keywords",
			cleaned:  testutil.SpecimenHungarianIDCard,
			fullText: "mother's name ... place of birth",
			at:       inWindow,
		},
		{
			name:    "window elapsed",
			cleaned: testutil.SpecimenHungarianIDCard,
			at:      late,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Check(tt.cleaned, tt.fullText, start, tt.at)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, processor.ErrGateRejected))
		})
	}
}

func TestGate_ReportsMissingGroup(t *testing.T) {
	gate := processor.NewGate(testutil.ScannerConfig())
	start := time.Now()

	err := gate.Check(testutil.SpecimenHungarianIDCard, "Anyja neve", start, start)

	var gateErr *processor.GateError
	require.True(t, errors.As(err, &gateErr))
	assert.Equal(t, []string{"hely", "place", "Hely", "Place"}, gateErr.Missing)
	assert.Contains(t, err.Error(), "place")
}

func TestGate_Disabled(t *testing.T) {
	cfg := testutil.ScannerConfig()
	cfg.GatedPrefix = ""
	start := time.Now()

	assert.NoError(t, processor.NewGate(cfg).Check(testutil.SpecimenHungarianIDCard, "", start, start))

	var nilGate *processor.Gate
	assert.NoError(t, nilGate.Check(testutil.SpecimenHungarianIDCard, "", start, start))
}
