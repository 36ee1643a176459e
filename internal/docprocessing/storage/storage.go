package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medflow/mrz-scanner/internal/docprocessing/domain"
	"github.com/medflow/mrz-scanner/internal/mrz"
)

// AbandonedReason is recorded on sessions dropped while still scanning.
const AbandonedReason = "scan session abandoned"

// Entry is a stored session together with the cleaner that reads its frames.
// Each session owns its cleaner; cleaners are never shared.
type Entry struct {
	mu        sync.Mutex
	session   domain.ScanSession
	cleaner   *mrz.Cleaner
	startedAt time.Time
}

// Update runs fn with exclusive access to the session and its cleaner.
func (e *Entry) Update(fn func(s *domain.ScanSession, c *mrz.Cleaner)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session, e.cleaner)
}

// Snapshot returns a copy of the session
func (e *Entry) Snapshot() domain.ScanSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// TempStorage keeps scan sessions in memory only. MRZ text never leaves the
// process through it, and sessions are dropped after a TTL.
type TempStorage struct {
	mu       sync.RWMutex
	sessions map[string]*Entry
	ttl      time.Duration
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
	onEvict  func(domain.ScanSession)
}

// NewTempStorage creates a new in-memory session store with the given TTL
// and starts its cleanup loop. Call Close to stop it.
func NewTempStorage(ttl time.Duration) *TempStorage {
	s := &TempStorage{
		sessions: make(map[string]*Entry),
		ttl:      ttl,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// GenerateSessionID creates a random session ID
func GenerateSessionID() string {
	return uuid.NewString()
}

// Create stores a new session with a fresh cleaner
func (s *TempStorage) Create(session domain.ScanSession, opts ...mrz.Option) *Entry {
	e := &Entry{session: session, cleaner: mrz.NewCleaner(opts...), startedAt: session.StartedAt}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = e
	return e
}

// Get retrieves a session entry by ID
func (s *TempStorage) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}

// Delete removes a session from storage
func (s *TempStorage) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions
func (s *TempStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// OnEvict registers fn to be called with every session Cleanup drops while
// it is still scanning. Such sessions are marked expired before fn sees them,
// so holders of a stale *Entry find them finished. fn is called without any
// lock held. Register it before the first Cleanup runs.
func (s *TempStorage) OnEvict(fn func(domain.ScanSession)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

// Close stops the cleanup loop
func (s *TempStorage) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *TempStorage) cleanupLoop() {
	interval := s.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Cleanup()
		case <-s.done:
			return
		}
	}
}

// Cleanup removes sessions started more than the TTL ago and returns how
// many were dropped.
func (s *TempStorage) Cleanup() int {
	now := s.now()
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var stale []*Entry
	for id, e := range s.sessions {
		if e.startedAt.Before(cutoff) {
			delete(s.sessions, id)
			stale = append(stale, e)
		}
	}
	onEvict := s.onEvict
	s.mu.Unlock()

	var abandoned []domain.ScanSession
	for _, e := range stale {
		e.Update(func(session *domain.ScanSession, _ *mrz.Cleaner) {
			if session.Status.Terminal() {
				return
			}
			finished := now
			session.Status = domain.StatusExpired
			session.FinishedAt = &finished
			session.Error = AbandonedReason
			abandoned = append(abandoned, *session)
		})
	}

	if onEvict != nil {
		for _, session := range abandoned {
			onEvict(session)
		}
	}
	return len(stale)
}
