package events

import (
	"context"
	"time"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/pkg/logger"
	"github.com/medflow/mrz-scanner/pkg/messaging"
)

// Source identifies this service on published events
const Source = "scanner-service"

// Publisher is satisfied by *messaging.Publisher
type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// ScanEventPublisher publishes scan session events. Failures are logged and
// never fail the scan.
type ScanEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewScanEventPublisher creates a scan event publisher on top of pub
func NewScanEventPublisher(pub Publisher, log *logger.Logger) *ScanEventPublisher {
	return &ScanEventPublisher{publisher: pub, logger: log}
}

// NewRabbitMQScanEventPublisher declares the docprocessing exchange and
// publishes to it
func NewRabbitMQScanEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ScanEventPublisher, error) {
	pub, err := messaging.NewPublisher(rmq, messaging.ExchangeDocProcessingEvents, Source, log)
	if err != nil {
		return nil, err
	}
	return NewScanEventPublisher(pub, log), nil
}

// PublishScanStarted publishes a scan started event
func (p *ScanEventPublisher) PublishScanStarted(ctx context.Context, session *domain.ScanSession) {
	p.publish(ctx, session.ID, messaging.EventScanStarted, messaging.ScanStartedEvent{
		SessionID: session.ID,
		UserID:    session.UserID,
	})
}

// PublishScanCompleted publishes a scan completed event. The document is
// identified by its fingerprint only.
func (p *ScanEventPublisher) PublishScanCompleted(ctx context.Context, session *domain.ScanSession, result *domain.ExtractionResult, fingerprint string) {
	data := messaging.ScanCompletedEvent{
		SessionID:    session.ID,
		UserID:       session.UserID,
		DocumentType: string(result.DocumentType),
		Fingerprint:  fingerprint,
		Frames:       session.Frames,
	}
	if result.Scanner != nil {
		data.Format = result.Scanner.Format
		data.Repaired = result.Scanner.Repaired
	}
	if session.FinishedAt != nil {
		data.DurationMs = session.FinishedAt.Sub(session.StartedAt).Milliseconds()
	} else {
		data.DurationMs = time.Since(session.StartedAt).Milliseconds()
	}
	p.publish(ctx, session.ID, messaging.EventScanCompleted, data)
}

// PublishScanFailed publishes a scan failed event
func (p *ScanEventPublisher) PublishScanFailed(ctx context.Context, session *domain.ScanSession) {
	p.publish(ctx, session.ID, messaging.EventScanFailed, messaging.ScanFailedEvent{
		SessionID: session.ID,
		UserID:    session.UserID,
		Reason:    session.Error,
		Frames:    session.Frames,
	})
}

// PublishScanExpired publishes a scan expired event
func (p *ScanEventPublisher) PublishScanExpired(ctx context.Context, session *domain.ScanSession) {
	p.publish(ctx, session.ID, messaging.EventScanExpired, messaging.ScanExpiredEvent{
		SessionID: session.ID,
		UserID:    session.UserID,
		Frames:    session.Frames,
	})
}

func (p *ScanEventPublisher) publish(ctx context.Context, sessionID, eventType string, data any) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).
			Str("session_id", sessionID).
			Str("event_type", eventType).
			Msg("failed to publish scan event")
	}
}
