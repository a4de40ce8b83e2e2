// Package generation implements the progress and result screens that
// follow an orchestrator session from submission to the finished paper.
package generation

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/lembar/internal/assessment"
	"github.com/abhisek/lembar/internal/export"
	"github.com/abhisek/lembar/internal/orchestrator"
	"github.com/abhisek/lembar/internal/render"
)

// Runner drives one generation run against a session.
type Runner interface {
	Run(ctx context.Context, s *orchestrator.Session, in assessment.FormInputs) (*orchestrator.Result, error)
}

// Deps are shared by every screen of a generation.
type Deps struct {
	Context  context.Context
	Runner   Runner
	Session  *orchestrator.Session
	Exporter *export.Exporter
	Paper    render.PaperOptions
	Logger   *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Context == nil {
		d.Context = context.Background()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return d
}

// job is one submission: the inputs, the cancel func of its run, and the
// deps. It moves from the progress screen to the result screen.
type job struct {
	deps   Deps
	inputs assessment.FormInputs
	cancel context.CancelFunc
}

func newJob(deps Deps, in assessment.FormInputs) *job {
	return &job{deps: deps.withDefaults(), inputs: in}
}

// start launches the run in a command. The result arrives as runDoneMsg.
func (j *job) start() tea.Cmd {
	ctx, cancel := context.WithCancel(j.deps.Context)
	j.cancel = cancel
	runner, session, in := j.deps.Runner, j.deps.Session, j.inputs
	return func() tea.Msg {
		res, err := runner.Run(ctx, session, in)
		return runDoneMsg{Result: res, Err: err}
	}
}

// discard abandons the run and returns the session to idle.
func (j *job) discard() {
	if j.cancel != nil {
		j.cancel()
	}
	j.deps.Session.Reset()
}

// snapshotMsg carries a session snapshot read from sub.
type snapshotMsg struct {
	sub  <-chan orchestrator.Snapshot
	snap orchestrator.Snapshot
}

// runDoneMsg is sent when Runner.Run returns.
type runDoneMsg struct {
	Result *orchestrator.Result
	Err    error
}

// superseded reports whether err only means the run was discarded.
func (m runDoneMsg) superseded() bool {
	return errors.Is(m.Err, orchestrator.ErrSuperseded) || errors.Is(m.Err, context.Canceled)
}

// subscription follows session snapshots for one screen.
type subscription struct {
	ch    <-chan orchestrator.Snapshot
	close func()
}

func subscribe(s *orchestrator.Session) subscription {
	ch, unsubscribe := s.Subscribe()
	return subscription{ch: ch, close: unsubscribe}
}

// next waits for the following snapshot. It yields nil once the
// subscription is closed.
func (s subscription) next() tea.Cmd {
	ch := s.ch
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg{sub: ch, snap: snap}
	}
}

// owns reports whether msg was read from this subscription.
func (s subscription) owns(msg snapshotMsg) bool {
	return msg.sub == s.ch
}
