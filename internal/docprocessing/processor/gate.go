package processor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medflow/mrz-scanner/pkg/config"
)

// ErrGateRejected marks a frame that is not worth parsing yet. It is
// retryable.
var ErrGateRejected = errors.New("frame rejected by gate")

// GateError names the keyword group the frame was missing.
type GateError struct {
	Missing []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("frame does not show any of %s", strings.Join(e.Missing, ", "))
}

func (e *GateError) Unwrap() error {
	return ErrGateRejected
}

// Gate holds back documents with a configured MRZ prefix during the first
// moments of a session, until the frame's full text also shows every
// required keyword group. This keeps a half-visible card from being read
// before its back side is in view.
type Gate struct {
	prefix string
	window time.Duration
	groups [][]string
}

// NewGate builds a gate from the scanner settings. An empty prefix disables
// gating.
func NewGate(cfg config.ScannerConfig) *Gate {
	g := &Gate{prefix: cfg.GatedPrefix, window: cfg.AnalyzeWindow}
	for _, group := range cfg.RequiredKeywords {
		var words []string
		for _, w := range strings.Split(group, "|") {
			if w = strings.TrimSpace(w); w != "" {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			g.groups = append(g.groups, words)
		}
	}
	return g
}

// Check decides whether a cleaned frame captured at may be parsed in a
// session started at startedAt.
func (g *Gate) Check(cleaned, fullText string, startedAt, at time.Time) error {
	if g == nil || g.prefix == "" || !strings.HasPrefix(cleaned, g.prefix) {
		return nil
	}
	if at.Sub(startedAt) > g.window {
		return nil
	}
	for _, words := range g.groups {
		if !containsAny(fullText, words) {
			return &GateError{Missing: words}
		}
	}
	return nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
