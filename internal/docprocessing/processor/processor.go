package processor

import (
	"context"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/mrz"
)

// Processor turns one recognizer frame into an accepted extraction.
// Implementations may reject a frame with an error; the service decides
// whether the session keeps scanning.
type Processor interface {
	// Process reads frame using the session's cleaner. The cleaner carries
	// the previously rejected text, so it must belong to session.
	Process(ctx context.Context, cleaner *mrz.Cleaner, session *domain.ScanSession, frame domain.Frame) (*domain.ExtractionResult, error)

	// Name returns the processor name for logging/audit
	Name() string
}
