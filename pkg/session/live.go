package session

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/extract"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/mutate"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/org"
	"github.com/matzehuels/orgtower/pkg/org/transform"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/render"
)

// Session is one interactive editing session. It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	id        string
	runner    *pipeline.Runner
	opts      pipeline.Options
	analysis  contact.Analysis
	built     *pipeline.Built
	view      mutate.View
	coord     extract.Coordinator
	createdAt time.Time
	revision  uint64 // of the last record saved or restored
}

// New starts a session over a. The analysis is normalized; it must hold at
// least one contact. The view starts Unbuilt.
func New(id string, a contact.Analysis, runner *pipeline.Runner, opts pipeline.Options) (*Session, error) {
	if len(a.Contacts) == 0 {
		return nil, errors.New(errors.ErrCodeNoStakeholders, "no stakeholders identified")
	}
	return newSession(id, a, runner, opts)
}

func newSession(id string, a contact.Analysis, runner *pipeline.Runner, opts pipeline.Options) (*Session, error) {
	if err := opts.ValidateForBuild(); err != nil {
		return nil, err
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if id == "" {
		id = GenerateID()
	}
	return &Session{
		id:        id,
		runner:    runner,
		opts:      opts,
		analysis:  contact.NormalizeAnalysis(a),
		createdAt: time.Now(),
	}, nil
}

// Restore recreates a session from a saved record and reapplies its manual
// positions. Positions of contacts that no longer exist are dropped. A
// record whose contacts were all deleted restores to an empty session.
func Restore(ctx context.Context, rec *Record, runner *pipeline.Runner, opts pipeline.Options) (*Session, error) {
	opts.Department = rec.Department
	s, err := newSession(rec.ID, rec.Analysis, runner, opts)
	if err != nil {
		return nil, err
	}
	s.createdAt = rec.CreatedAt
	s.revision = rec.Revision

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rebuild(ctx); err != nil {
		return nil, err
	}
	for id, p := range rec.Positions {
		s.view.Place(id, p)
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Revision returns the revision of the record this session was last saved
// as or restored from.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Session) setRevision(rev uint64) {
	s.mu.Lock()
	s.revision = rev
	s.mu.Unlock()
}

// Analysis returns a copy of the canonical analysis.
func (s *Session) Analysis() contact.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analysis.Clone()
}

// Department returns the active department filter.
func (s *Session) Department() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.Department
}

// Departments lists the departments present in the analysis.
func (s *Session) Departments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return contact.Departments(s.analysis.Contacts)
}

// State returns the view state.
func (s *Session) State() mutate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.State()
}

// Rebuild recomputes the tree and layout and discards manual positions.
func (s *Session) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuild(ctx)
}

func (s *Session) rebuild(ctx context.Context) error {
	s.view.Invalidate()
	s.built = nil
	if len(s.analysis.Contacts) == 0 {
		// Everyone was deleted; there is nothing to lay out.
		return nil
	}

	built, err := pipeline.Build(ctx, s.analysis, s.opts)
	if err != nil {
		return err
	}
	l, err := s.runner.GenerateLayout(ctx, built.Tree, s.opts)
	if err != nil {
		return err
	}
	s.built = built
	s.view.Install(l)
	return nil
}

func (s *Session) ensureBuilt(ctx context.Context) error {
	if s.view.State() == mutate.Built || len(s.analysis.Contacts) == 0 {
		return nil
	}
	return s.rebuild(ctx)
}

// SetDepartment changes the filter and invalidates the view. An empty
// department removes the filter.
func (s *Session) SetDepartment(dept string) error {
	if err := errors.ValidateDepartment(dept); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.Department = dept
	s.view.Invalidate()
	return nil
}

// Delete removes every contact with id from the canonical analysis and
// bridges its reports to its manager. Deleting an unknown id is a no-op and
// returns false.
func (s *Session) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bridged := len(mutate.Reports(s.analysis, id))
	out, found := mutate.Delete(s.analysis, id)
	observability.Mutation().OnDelete(ctx, id, found, bridged)
	if !found {
		return false
	}
	s.analysis = out
	s.built = nil
	s.view.Invalidate()
	return true
}

// Reposition drags id by (dx, dy) screen units at the given zoom. Events for
// ids that are not part of the current view are dropped and return false.
func (s *Session) Reposition(ctx context.Context, id string, dx, dy, zoom float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.view.Reposition(id, dx, dy, zoom)
	observability.Mutation().OnReposition(ctx, id, ok)
	return ok
}

// Replace swaps in a new analysis, e.g. after re-extraction. An analysis
// without contacts is rejected and the current one kept.
func (s *Session) Replace(a contact.Analysis) error {
	if len(a.Contacts) == 0 {
		return errors.New(errors.ErrCodeNoStakeholders, "no stakeholders identified")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = contact.NormalizeAnalysis(a)
	s.built = nil
	s.view.Invalidate()
	return nil
}

// Reanalyze extracts docs and replaces the analysis with the result. Only
// the most recent call applies its result; older calls that finish later
// return a SUPERSEDED error. On any failure the current analysis is kept.
func (s *Session) Reanalyze(ctx context.Context, ex extract.Extractor, docs []string) error {
	a, seq, err := s.coord.Run(ctx, ex, docs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer request may have started while this one waited for the lock.
	if s.coord.Latest() != seq {
		return extract.ErrSuperseded
	}
	s.analysis = a
	s.built = nil
	s.view.Invalidate()
	return nil
}

// Tree returns the current tree, rebuilding if needed. It returns nil when
// the analysis is empty.
func (s *Session) Tree(ctx context.Context) (*org.Tree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBuilt(ctx); err != nil {
		return nil, err
	}
	if s.built == nil {
		return nil, nil
	}
	return s.built.Tree, nil
}

// Report returns the repair report of the current build.
func (s *Session) Report(ctx context.Context) (transform.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureBuilt(ctx); err != nil {
		return transform.Report{}, err
	}
	if s.built == nil {
		return transform.Report{}, nil
	}
	return s.built.Report, nil
}

// Scene projects the current view, rebuilding if needed.
func (s *Session) Scene(ctx context.Context) (render.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene(ctx)
}

func (s *Session) scene(ctx context.Context) (render.Scene, error) {
	if err := s.ensureBuilt(ctx); err != nil {
		return render.Scene{}, err
	}
	eff, ok := s.view.Effective()
	if !ok || s.built == nil {
		return render.Scene{Options: s.opts.LayoutOptions()}, nil
	}
	opts := append(s.opts.ProjectOptions(), render.WithMoved(s.view.Overrides()))
	return render.Project(s.built.Tree, eff, opts...), nil
}

func (s *Session) meta() render.Meta {
	m := render.Meta{AccountName: s.analysis.AccountName, Department: s.opts.Department}
	if s.built != nil {
		r := s.built.Report
		m.Report = &r
	}
	return m
}

// Document returns the serializable view, rebuilding if needed.
func (s *Session) Document(ctx context.Context) (render.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.scene(ctx)
	if err != nil {
		return render.Document{}, err
	}
	return render.NewDocument(sc, s.meta()), nil
}

// Render writes the current view in the given formats.
func (s *Session) Render(ctx context.Context, formats []string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, err := s.scene(ctx)
	if err != nil {
		return nil, err
	}
	opts := s.opts
	opts.Formats = formats
	return s.runner.Render(ctx, sc, s.meta(), opts)
}

// Positions returns a copy of the manual positions.
func (s *Session) Positions() map[string]layout.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Overrides()
}

// Record snapshots the session for a Store.
func (s *Session) Record(ttl time.Duration) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Record{
		ID:         s.id,
		Analysis:   s.analysis.Clone(),
		Department: s.opts.Department,
		Positions:  s.view.Overrides(),
		Revision:   s.revision,
		CreatedAt:  s.createdAt,
		ExpiresAt:  time.Now().Add(ttl),
	}
}
