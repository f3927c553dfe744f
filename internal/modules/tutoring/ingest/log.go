package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
)

// Log is the append-only trace log of one session. There is a single writer
// per session; the mutex only keeps snapshot header copies consistent with
// concurrent appends.
type Log struct {
	sessionID uuid.UUID

	mu     sync.RWMutex
	traces []*types.InteractionTrace
	ids    map[uuid.UUID]struct{}
}

func NewLog(sessionID uuid.UUID) *Log {
	return &Log{sessionID: sessionID, ids: map[uuid.UUID]struct{}{}}
}

func (l *Log) SessionID() uuid.UUID { return l.sessionID }

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.traces)
}

// Last returns the last committed trace, or nil for an empty log.
func (l *Log) Last() *types.InteractionTrace {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.traces) == 0 {
		return nil
	}
	return l.traces[len(l.traces)-1]
}

func (l *Log) lastTimestamp() (time.Time, bool) {
	if last := l.Last(); last != nil {
		return last.Timestamp, true
	}
	return time.Time{}, false
}

func (l *Log) has(id uuid.UUID) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

func (l *Log) append(t *types.InteractionTrace) {
	l.mu.Lock()
	l.traces = append(l.traces, t)
	l.ids[t.ID] = struct{}{}
	l.mu.Unlock()
}

// Snapshot returns a consistent prefix of the log. Later appends are never
// visible through it.
func (l *Log) Snapshot() types.TraceSequence {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(types.TraceSequence, len(l.traces))
	copy(out, l.traces)
	return out
}

// Tail returns up to n traces preceding the newest one, oldest first.
func (l *Log) Tail(n int) types.TraceSequence {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || len(l.traces) <= 1 {
		return nil
	}
	end := len(l.traces) - 1
	start := end - n
	if start < 0 {
		start = 0
	}
	out := make(types.TraceSequence, end-start)
	copy(out, l.traces[start:end])
	return out
}
