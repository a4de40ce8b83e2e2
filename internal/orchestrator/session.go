package orchestrator

import (
	"sync"
	"time"

	"github.com/abhisek/lembar/internal/assessment"
)

// Phase is a step of the generation state machine.
type Phase int

const (
	PhaseIdle              Phase = iota // No generation started, or start over
	PhaseAssessmentPending              // Text call in flight
	PhaseAssessmentReady                // Questions available, illustrations not started
	PhaseIllustrating                   // Illustration loop running
	PhaseComplete                       // All flagged questions attempted
	PhaseFailed                         // Text call failed or the run was cancelled
)

var phaseNames = [...]string{
	PhaseIdle:              "idle",
	PhaseAssessmentPending: "assessment_pending",
	PhaseAssessmentReady:   "assessment_ready",
	PhaseIllustrating:      "illustrating",
	PhaseComplete:          "complete",
	PhaseFailed:            "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText lets snapshots serialize the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal reports whether no further snapshots follow for the run.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// Progress counts attempted illustrations.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Snapshot is the published state of a session. Data and Progress are
// owned by the snapshot and must be treated as read-only.
type Snapshot struct {
	Run       uint64           `json:"run"`
	Phase     Phase            `json:"phase"`
	Data      *assessment.Data `json:"data,omitempty"`
	Progress  *Progress        `json:"progress,omitempty"`
	Err       string           `json:"error,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Session is the single-writer state container for one user's
// assessment. The orchestrator writes to it; presentation code reads
// Snapshot or subscribes for updates.
type Session struct {
	mu      sync.Mutex
	run     uint64
	snap    Snapshot
	subs    map[int]chan Snapshot
	nextSub int

	// observe, if set, sees every published snapshot in order.
	observe func(Snapshot)
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{
		snap: Snapshot{Phase: PhaseIdle, UpdatedAt: time.Now()},
		subs: make(map[int]chan Snapshot),
	}
}

// Snapshot returns the latest published state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel that receives every subsequent snapshot,
// starting with the current one. A slow reader only sees the latest
// snapshot; intermediate ones are dropped. Call the returned function to
// unsubscribe; it closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snap
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Reset discards the current assessment and returns to Idle. A run in
// progress keeps its in-flight call but can no longer publish.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.snap = Snapshot{Run: s.run, Phase: PhaseIdle}
	s.publishLocked()
}

// Busy reports whether a run is between start and a terminal phase.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Phase != PhaseIdle && !s.snap.Phase.Terminal()
}

// begin starts a new run, superseding any previous one.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.snap = Snapshot{Run: s.run, Phase: PhaseAssessmentPending}
	s.publishLocked()
	return s.run
}

// current reports whether run is still the session's active run.
func (s *Session) current(run uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run == run
}

// update applies fn to the snapshot of run and publishes it. It is a
// no-op returning false once run has been superseded.
func (s *Session) update(run uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != run {
		return false
	}
	fn(&s.snap)
	s.publishLocked()
	return true
}

func (s *Session) publishLocked() {
	s.snap.UpdatedAt = time.Now()
	if s.observe != nil {
		s.observe(s.snap)
	}
	for _, ch := range s.subs {
		select {
		case ch <- s.snap:
			continue
		default:
		}
		// Replace the unread snapshot with the newer one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.snap:
		default:
		}
	}
}
