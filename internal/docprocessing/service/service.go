package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/docprocessing/events"
	"github.com/medflow/mrz-scanner/internal/docprocessing/metrics"
	"github.com/medflow/mrz-scanner/internal/docprocessing/processor"
	"github.com/medflow/mrz-scanner/internal/docprocessing/storage"
	"github.com/medflow/mrz-scanner/internal/mrz"
	"github.com/medflow/mrz-scanner/pkg/config"
	"github.com/medflow/mrz-scanner/pkg/errors"
	"github.com/medflow/mrz-scanner/pkg/logger"
)

const (
	auditTimeout = 5 * time.Second

	// consentSkew tolerates clock drift between the capture client and us.
	consentSkew = time.Minute

	defaultPerPage = 20
	maxPerPage     = 100
)

// AuditStore persists the audit trail. *repository.AuditRepository
// implements it.
type AuditStore interface {
	Create(ctx context.Context, entry *domain.ProcessingAuditEntry) error
	List(ctx context.Context, page, perPage int) ([]domain.ProcessingAuditEntry, int64, error)
	Fingerprint(documentNumber string) string
}

// StartSessionRequest opens a scan session. Scanning personal documents
// requires the holder's consent first.
type StartSessionRequest struct {
	ConsentTimestamp *time.Time `json:"consent_timestamp" validate:"required"`
}

// SubmitFrameRequest carries the recognizer output for one camera frame
type SubmitFrameRequest struct {
	Text       string     `json:"text" validate:"required,max=4096"`
	FullText   string     `json:"full_text" validate:"max=16384"`
	CapturedAt *time.Time `json:"captured_at"`
}

// Frame converts the request into a domain frame
func (r SubmitFrameRequest) Frame() domain.Frame {
	f := domain.Frame{Text: r.Text, FullText: r.FullText}
	if r.CapturedAt != nil {
		f.CapturedAt = *r.CapturedAt
	}
	return f
}

// Service runs scan sessions: frames go through the processor until a
// record is accepted, the document is rejected or the session runs out of
// time. Finished sessions are audited, published and counted.
type Service struct {
	cfg       config.ScannerConfig
	processor processor.Processor
	storage   *storage.TempStorage
	audit     AuditStore
	publisher *events.ScanEventPublisher
	metrics   *metrics.Metrics
	log       *logger.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewService creates a new scan service. audit and publisher may be nil.
// The service takes over the storage's eviction hook.
func NewService(
	cfg config.ScannerConfig,
	proc processor.Processor,
	store *storage.TempStorage,
	audit AuditStore,
	publisher *events.ScanEventPublisher,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	s := &Service{
		cfg:       cfg,
		processor: proc,
		storage:   store,
		audit:     audit,
		publisher: publisher,
		metrics:   m,
		log:       log.WithComponent("scan-service"),
		now:       time.Now,
	}
	store.OnEvict(s.evicted)
	return s
}

// Wait blocks until pending audit writes are done
func (s *Service) Wait() {
	s.wg.Wait()
}

// StartSession opens a scan session for userID
func (s *Service) StartSession(ctx context.Context, userID string, req StartSessionRequest) (*domain.ScanSession, error) {
	now := s.now()
	if req.ConsentTimestamp == nil || req.ConsentTimestamp.IsZero() {
		return nil, errors.BadRequest("consent is required before scanning a document")
	}
	if req.ConsentTimestamp.After(now.Add(consentSkew)) {
		return nil, errors.BadRequest("consent timestamp is in the future")
	}

	session := domain.ScanSession{
		ID:               storage.GenerateSessionID(),
		UserID:           userID,
		Status:           domain.StatusScanning,
		StartedAt:        now,
		ConsentTimestamp: req.ConsentTimestamp.UTC(),
	}
	s.storage.Create(session, mrz.WithLogger(s.log.WithSessionID(session.ID)))

	s.metrics.SessionStarted()
	s.publisher.PublishScanStarted(ctx, &session)

	s.log.WithUserID(userID).Info().
		Str("session_id", session.ID).
		Msg("scan session started")

	return &session, nil
}

// GetSession returns a session. A session past its time budget is expired
// on read.
func (s *Service) GetSession(ctx context.Context, id string) (*domain.ScanSession, error) {
	e, ok := s.storage.Get(id)
	if !ok {
		return nil, errors.NotFound("scan session")
	}

	var (
		snapshot domain.ScanSession
		expired  bool
	)
	e.Update(func(session *domain.ScanSession, _ *mrz.Cleaner) {
		expired = s.expire(session, s.now())
		snapshot = *session
	})
	if expired {
		s.finish(ctx, snapshot, nil)
	}
	return &snapshot, nil
}

// SubmitFrame feeds one recognized frame to a session. Frames that are
// merely not good enough yet come back with Retry set; the capture client
// keeps sending frames until the outcome is no longer scanning.
func (s *Service) SubmitFrame(ctx context.Context, id string, frame domain.Frame) (*domain.FrameOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := s.storage.Get(id)
	if !ok {
		return nil, errors.NotFound("scan session")
	}

	var (
		outcome  domain.FrameOutcome
		snapshot domain.ScanSession
		result   *domain.ExtractionResult
		finished bool
		err      error
	)
	e.Update(func(session *domain.ScanSession, cleaner *mrz.Cleaner) {
		if session.Status.Terminal() {
			err = errors.Gone(fmt.Sprintf("scan session is %s", session.Status))
			return
		}
		now := s.now()
		if s.expire(session, now) {
			finished = true
			snapshot = *session
			outcome = frameOutcome(session)
			outcome.Reason = session.Error
			return
		}

		session.Frames++
		var procErr error
		result, procErr = s.processor.Process(ctx, cleaner, session, frame)
		if errors.Is(procErr, context.Canceled) || errors.Is(procErr, context.DeadlineExceeded) {
			session.Frames--
			err = procErr
			return
		}

		finished = s.apply(session, result, procErr, now)
		snapshot = *session
		outcome = frameOutcome(session)
		switch {
		case procErr == nil:
			outcome.Accepted = true
			outcome.Result = result.Scanner
			outcome.Warnings = result.Warnings
		case !finished:
			outcome.Retry = true
			outcome.Reason = procErr.Error()
		default:
			outcome.Reason = session.Error
		}
	})
	if err != nil {
		return nil, err
	}

	if finished {
		s.finish(ctx, snapshot, result)
	}
	return &outcome, nil
}

// apply records the processor's verdict on the session and reports whether
// the session is finished.
func (s *Service) apply(session *domain.ScanSession, result *domain.ExtractionResult, err error, now time.Time) bool {
	log := s.log.With().Str("session_id", session.ID).Int("frame", session.Frames).Logger()

	var acceptance *mrz.AcceptanceError
	switch {
	case err == nil:
		s.metrics.ObserveFrame(metrics.OutcomeAccepted)
		session.Status = domain.StatusCompleted
		session.FinishedAt = &now
		session.Result = result.Scanner
		return true

	case errors.Is(err, processor.ErrGateRejected):
		s.metrics.ObserveFrame(metrics.OutcomeGated)
		log.Debug().Err(err).Msg("frame gated")
		return false

	case errors.As(err, &acceptance):
		s.metrics.ObserveFrame(metrics.OutcomeRejected)
		log.Debug().Bool("repeated", acceptance.Repeated).Msg("check digits rejected")
		return false

	case mrz.Retryable(err):
		s.metrics.ObserveFrame(metrics.OutcomeNoise)
		log.Debug().Err(err).Msg("frame not readable as MRZ")
		return false

	default:
		s.metrics.ObserveFrame(metrics.OutcomeFailed)
		log.Warn().Err(err).Msg("document rejected")
		session.Status = domain.StatusFailed
		session.FinishedAt = &now
		session.Error = err.Error()
		return true
	}
}

// expire ends a scanning session that ran past MaxSessionDuration
func (s *Service) expire(session *domain.ScanSession, now time.Time) bool {
	if session.Status != domain.StatusScanning || now.Sub(session.StartedAt) <= s.cfg.MaxSessionDuration {
		return false
	}
	session.Status = domain.StatusExpired
	session.FinishedAt = &now
	session.Error = "scan session timed out"
	return true
}

// evicted finishes sessions the storage dropped while still scanning. The
// storage has already marked them expired.
func (s *Service) evicted(session domain.ScanSession) {
	s.finish(context.Background(), session, nil)
}

// finish runs the side effects of a session reaching a final status
func (s *Service) finish(ctx context.Context, session domain.ScanSession, result *domain.ExtractionResult) {
	s.metrics.SessionFinished(string(session.Status))

	entry := &domain.ProcessingAuditEntry{
		SessionID:        session.ID,
		ConsentTimestamp: session.ConsentTimestamp,
		ConsentGivenBy:   session.UserID,
		FramesAnalyzed:   session.Frames,
	}
	var elapsed time.Duration
	if session.FinishedAt != nil {
		elapsed = session.FinishedAt.Sub(session.StartedAt)
		entry.ProcessingDurationMs = elapsed.Milliseconds()
	}

	log := s.log.Info().
		Str("session_id", session.ID).
		Str("status", string(session.Status)).
		Int("frames", session.Frames)

	switch session.Status {
	case domain.StatusCompleted:
		fingerprint := s.fingerprint(result.Scanner.DocumentNumber)
		s.metrics.ObserveAccepted(result.Scanner.Format, session.Frames, result.Scanner.Repaired, elapsed)
		s.publisher.PublishScanCompleted(ctx, &session, result, fingerprint)

		entry.Outcome = domain.AuditAccepted
		entry.DocumentType = string(result.DocumentType)
		entry.Format = result.Scanner.Format
		entry.DocumentFingerprint = fingerprint
		entry.FieldsExtracted = result.FieldKeys()
		entry.Repaired = result.Scanner.Repaired
		log = log.Str("format", result.Scanner.Format)

	case domain.StatusFailed:
		s.publisher.PublishScanFailed(ctx, &session)
		entry.Outcome = domain.AuditFailed

	case domain.StatusExpired:
		s.publisher.PublishScanExpired(ctx, &session)
		entry.Outcome = domain.AuditExpired
	}
	log.Msg("scan session finished")

	s.writeAudit(ctx, entry)
}

func (s *Service) fingerprint(documentNumber string) string {
	if s.audit == nil {
		return ""
	}
	return s.audit.Fingerprint(documentNumber)
}

// writeAudit stores the entry in the background so a slow database never
// holds up the capture client
func (s *Service) writeAudit(ctx context.Context, entry *domain.ProcessingAuditEntry) {
	if s.audit == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()

		if err := s.audit.Create(ctx, entry); err != nil {
			s.log.WithError(err).Error().
				Str("session_id", entry.SessionID).
				Str("outcome", string(entry.Outcome)).
				Msg("failed to write audit entry")
		}
	}()
}

// ListAudit returns a page of the audit trail, newest first
func (s *Service) ListAudit(ctx context.Context, page, perPage int) ([]domain.ProcessingAuditEntry, int64, error) {
	if s.audit == nil {
		return nil, 0, errors.Internal("audit trail is not configured")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return s.audit.List(ctx, page, perPage)
}

func frameOutcome(session *domain.ScanSession) domain.FrameOutcome {
	return domain.FrameOutcome{
		SessionID: session.ID,
		Status:    session.Status,
		Frames:    session.Frames,
	}
}
