package session

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/extract"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/mutate"
	"github.com/matzehuels/orgtower/pkg/observability"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/render"
)

func testAnalysis() contact.Analysis {
	return contact.Analysis{
		AccountName: "Acme",
		Contacts: []contact.Contact{
			{ID: "ceo", Name: "Ada", SeniorityRank: 1, Department: "Executive"},
			{ID: "cto", Name: "Bo", ManagerID: contact.Ref("ceo"), SeniorityRank: 2, Department: "Engineering"},
			{ID: "eng1", Name: "Cy", ManagerID: contact.Ref("cto"), SeniorityRank: 4, Department: "Engineering"},
			{ID: "eng2", Name: "Di", ManagerID: contact.Ref("cto"), SeniorityRank: 5, Department: "Engineering"},
			{ID: "cfo", Name: "Ed", ManagerID: contact.Ref("ceo"), SeniorityRank: 3, Department: "Finance"},
		},
	}
}

func testRunner() *pipeline.Runner {
	return pipeline.NewRunner(nil, nil, log.New(io.Discard))
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := New("test", testAnalysis(), testRunner(), pipeline.Options{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func document(t *testing.T, s *Session) render.Document {
	t.Helper()
	doc, err := s.Document(context.Background())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	return doc
}

func node(doc render.Document, id string) (render.DocumentNode, bool) {
	for _, n := range doc.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return render.DocumentNode{}, false
}

func TestNew_RequiresContacts(t *testing.T) {
	_, err := New("", contact.Analysis{AccountName: "Acme"}, nil, pipeline.Options{})
	if !errors.Is(err, errors.ErrCodeNoStakeholders) {
		t.Errorf("error = %v, want NO_STAKEHOLDERS", err)
	}
}

func TestSession_BuildsLazily(t *testing.T) {
	s := newTestSession(t)
	if s.State() != mutate.Unbuilt {
		t.Fatalf("new session state = %v", s.State())
	}

	doc := document(t, s)
	if s.State() != mutate.Built {
		t.Errorf("state after Document() = %v", s.State())
	}
	if len(doc.Nodes) != 5 || doc.AccountName != "Acme" {
		t.Errorf("document = %d nodes, account %q", len(doc.Nodes), doc.AccountName)
	}
	if doc.Report == nil || doc.Report.Kept != 5 {
		t.Errorf("report = %+v", doc.Report)
	}
}

func TestSession_Delete(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	document(t, s)

	if s.Delete(ctx, "ghost") {
		t.Error("Delete(ghost) reported a change")
	}
	if s.State() != mutate.Built {
		t.Error("no-op delete invalidated the view")
	}

	if !s.Delete(ctx, "cto") {
		t.Fatal("Delete(cto) = false")
	}
	if s.State() != mutate.Unbuilt {
		t.Errorf("state after delete = %v", s.State())
	}

	doc := document(t, s)
	if _, ok := node(doc, "cto"); ok {
		t.Error("cto still in the document")
	}
	for _, id := range []string{"eng1", "eng2"} {
		n, _ := node(doc, id)
		if n.ParentID != "ceo" {
			t.Errorf("%s.ParentID = %q, want ceo", id, n.ParentID)
		}
	}
	if _, ok := s.Analysis().Contact("cto"); ok {
		t.Error("cto still in the canonical analysis")
	}
}

func TestSession_DeleteEveryone(t *testing.T) {
	s, _ := New("solo", contact.Analysis{Contacts: []contact.Contact{{ID: "a", SeniorityRank: 1}}}, testRunner(), pipeline.Options{})
	if !s.Delete(context.Background(), "a") {
		t.Fatal("Delete() = false")
	}
	doc := document(t, s)
	if len(doc.Nodes) != 0 || len(doc.Connectors) != 0 {
		t.Errorf("document = %+v", doc)
	}
}

func TestSession_Reposition(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if s.Reposition(ctx, "cto", 10, 10, 1) {
		t.Error("Reposition() succeeded before the first build")
	}

	before, _ := node(document(t, s), "cto")
	if !s.Reposition(ctx, "cto", 30, -20, 2) {
		t.Fatal("Reposition() = false")
	}
	if s.Reposition(ctx, "ghost", 1, 1, 1) {
		t.Error("Reposition() accepted an unknown id")
	}

	after, _ := node(document(t, s), "cto")
	if after.X != before.X+15 || after.Y != before.Y-10 || !after.Moved {
		t.Errorf("cto moved from %+v to %+v", before, after)
	}
	if eng, _ := node(document(t, s), "eng1"); eng.Moved {
		t.Error("eng1 marked as moved")
	}

	if err := s.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Positions()) != 0 {
		t.Error("Rebuild() kept manual positions")
	}
}

func TestSession_Connectors_FollowMovedBoxes(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	document(t, s)
	s.Reposition(ctx, "eng1", 0, 100, 1)

	doc := document(t, s)
	eng, _ := node(doc, "eng1")
	for _, c := range doc.Connectors {
		if c.To == "eng1" {
			end := c.Points[len(c.Points)-1]
			if end.Y != eng.Y || end.X != eng.X+doc.NodeWidth/2 {
				t.Errorf("connector ends at %+v, box at (%v, %v)", end, eng.X, eng.Y)
			}
			return
		}
	}
	t.Error("no connector into eng1")
}

func TestSession_SetDepartment(t *testing.T) {
	s := newTestSession(t)
	document(t, s)

	if err := s.SetDepartment("Engineering"); err != nil {
		t.Fatal(err)
	}
	if s.State() != mutate.Unbuilt {
		t.Error("filter change did not invalidate the view")
	}

	doc := document(t, s)
	var ids []string
	for _, n := range doc.Nodes {
		ids = append(ids, n.ID)
	}
	if diff := cmp.Diff([]string{"cto", "eng1", "eng2"}, ids); diff != "" {
		t.Errorf("filtered nodes mismatch (-want +got):\n%s", diff)
	}
	if doc.Department != "Engineering" {
		t.Errorf("Department = %q", doc.Department)
	}
	if len(s.Analysis().Contacts) != 5 {
		t.Error("filter changed the canonical analysis")
	}
	if diff := cmp.Diff([]string{"Engineering", "Executive", "Finance"}, s.Departments()); diff != "" {
		t.Errorf("Departments() mismatch (-want +got):\n%s", diff)
	}

	if err := s.SetDepartment("bad\x01"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("SetDepartment(control char) error = %v", err)
	}
}

func TestSession_Replace(t *testing.T) {
	s := newTestSession(t)

	if err := s.Replace(contact.Analysis{AccountName: "Empty"}); !errors.Is(err, errors.ErrCodeNoStakeholders) {
		t.Errorf("Replace(empty) error = %v", err)
	}
	if s.Analysis().AccountName != "Acme" {
		t.Error("failed Replace() dropped the previous analysis")
	}

	if err := s.Replace(contact.Analysis{AccountName: "Globex", Contacts: []contact.Contact{{ID: "x", SeniorityRank: 1}}}); err != nil {
		t.Fatal(err)
	}
	if doc := document(t, s); doc.AccountName != "Globex" || len(doc.Nodes) != 1 {
		t.Errorf("document after Replace = %+v", doc)
	}
}

func TestSession_Reanalyze(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()
	document(t, s)

	failing := extract.FuncExtractor(func(context.Context, string) (*contact.Analysis, error) {
		return nil, stderrors.New("upstream down")
	})
	if err := s.Reanalyze(ctx, failing, []string{"notes"}); !errors.Is(err, errors.ErrCodeExtraction) {
		t.Errorf("error = %v, want EXTRACTION_FAILED", err)
	}
	if s.State() != mutate.Built || s.Analysis().AccountName != "Acme" {
		t.Error("failed extraction disturbed the session")
	}

	doc := `{"accountName": "Acme", "contacts": [{"id": "vp", "name": "Vi", "seniorityRank": 1}]}`
	if err := s.Reanalyze(ctx, extract.StaticExtractor{}, []string{doc}); err != nil {
		t.Fatalf("Reanalyze() error = %v", err)
	}
	if got := document(t, s); len(got.Nodes) != 1 || got.Nodes[0].ID != "vp" {
		t.Errorf("document after Reanalyze = %+v", got.Nodes)
	}
}

func TestSession_Render(t *testing.T) {
	s := newTestSession(t)
	artifacts, err := s.Render(context.Background(), []string{"svg", "dot"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(artifacts["svg"]) == 0 || len(artifacts["dot"]) == 0 {
		t.Errorf("artifacts = %v", artifacts)
	}
}

type recordingHooks struct {
	observability.NoopMutationHooks
	mu      sync.Mutex
	deletes []string
	bridged []int
}

func (h *recordingHooks) OnDelete(_ context.Context, id string, found bool, bridged int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if found {
		h.deletes = append(h.deletes, id)
		h.bridged = append(h.bridged, bridged)
	}
}

func TestSession_DeleteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetMutationHooks(hooks)
	defer observability.Reset()

	s := newTestSession(t)
	s.Delete(context.Background(), "ghost")
	s.Delete(context.Background(), "cto")

	if diff := cmp.Diff([]string{"cto"}, hooks.deletes); diff != "" {
		t.Errorf("deletes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, hooks.bridged); diff != "" {
		t.Errorf("bridged mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)
	if err := s.SetDepartment("Engineering"); err != nil {
		t.Fatal(err)
	}
	document(t, s)
	s.Reposition(ctx, "eng2", 50, 0, 1)
	want := document(t, s)

	rec := s.Record(time.Hour)
	rec.Positions["ghost"] = layout.Point{X: 1, Y: 1}

	restored, err := Restore(ctx, rec, testRunner(), pipeline.Options{})
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.ID() != "test" || restored.Department() != "Engineering" {
		t.Errorf("restored id %q, department %q", restored.ID(), restored.Department())
	}
	if _, ok := restored.Positions()["ghost"]; ok {
		t.Error("stale position restored")
	}
	if diff := cmp.Diff(want, document(t, restored)); diff != "" {
		t.Errorf("restored document mismatch (-want +got):\n%s", diff)
	}
}

// =============================================================================
// Stores
// =============================================================================

func testRecord(id string, ttl time.Duration) *Record {
	return &Record{
		ID:         id,
		Analysis:   contact.NormalizeAnalysis(testAnalysis()),
		Department: "Engineering",
		Positions:  map[string]layout.Point{"cto": {X: 10, Y: 20}},
		CreatedAt:  time.Now().Truncate(time.Second),
		ExpiresAt:  time.Now().Add(ttl).Truncate(time.Second),
	}
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if rec, err := store.Get(ctx, "missing"); rec != nil || err != nil {
		t.Errorf("Get(missing) = %v, %v", rec, err)
	}

	want := testRecord("s1", time.Hour)
	if err := store.Set(ctx, want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if diff := cmp.Diff(want.Analysis, got.Analysis); diff != "" {
		t.Errorf("analysis mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Positions, got.Positions); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	if got.Department != "Engineering" || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("record = %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if rec, _ := store.Get(ctx, "s1"); rec != nil {
		t.Error("Get() after Delete() returned a record")
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}

	expired := testRecord("old", time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, expired); err != nil {
		t.Fatal(err)
	}
	if rec, _ := store.Get(ctx, "old"); rec != nil {
		t.Error("Get() returned an expired record")
	}
	if err := store.Cleanup(ctx); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	exerciseStore(t, store)

	ctx := context.Background()
	store.Set(ctx, testRecord("a", time.Hour))
	rec := testRecord("b", time.Hour)
	rec.ExpiresAt = time.Now().Add(-time.Second)
	store.Set(ctx, rec)
	store.Cleanup(ctx)
	if store.Len() != 1 {
		t.Errorf("Len() after Cleanup = %d, want 1", store.Len())
	}
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := testRecord("a", time.Hour)
	store.Set(ctx, rec)
	rec.Analysis.Contacts[0].Name = "changed"

	got, _ := store.Get(ctx, "a")
	if got.Analysis.Contacts[0].Name == "changed" {
		t.Error("store aliases the caller's record")
	}
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exerciseStore(t, store)
}

func TestFileStore_IDCannotEscape(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)
	if got := store.recordPath("../../etc/passwd"); got != filepath.Join(dir, "passwd.json") {
		t.Errorf("recordPath() = %q", got)
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	exerciseStore(t, store)
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()
	ctx := context.Background()

	if err := store.Set(ctx, testRecord("s1", time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(redisPrefix + "s1") {
		t.Fatal("record not stored under the session prefix")
	}
	if ttl := mr.TTL(redisPrefix + "s1"); ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if rec, _ := store.Get(ctx, "s1"); rec != nil {
		t.Error("record survived its TTL")
	}
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not-a-url"); err == nil {
		t.Error("NewRedisStore() accepted a bad url")
	}
}

// =============================================================================
// Manager
// =============================================================================

func TestManager(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, testRunner(), pipeline.Options{})

	s, err := m.Create(ctx, testAnalysis(), "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got, err := m.Get(ctx, s.ID()); err != nil || got != s {
		t.Errorf("Get() = %p, %v; want the live session", got, err)
	}

	s.Delete(ctx, "cfo")
	if err := m.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	// A second instance sharing the store restores the session.
	other := NewManager(store, testRunner(), pipeline.Options{})
	restored, err := other.Get(ctx, s.ID())
	if err != nil {
		t.Fatalf("Get() from store error = %v", err)
	}
	if _, ok := restored.Analysis().Contact("cfo"); ok {
		t.Error("restored session lost the delete")
	}

	if _, err := m.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(nope) error = %v", err)
	}
	if err := m.Delete(ctx, s.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, s.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get() after Delete error = %v", err)
	}
}

func TestManager_SharedStoreSeesNewerRevision(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewManager(store, testRunner(), pipeline.Options{})
	b := NewManager(store, testRunner(), pipeline.Options{})

	created, err := a.Create(ctx, testAnalysis(), "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id := created.ID()

	onB, err := b.Get(ctx, id)
	if err != nil {
		t.Fatalf("b.Get() error = %v", err)
	}
	onB.Delete(ctx, "cfo")
	if err := b.Save(ctx, onB); err != nil {
		t.Fatalf("b.Save() error = %v", err)
	}

	onA, err := a.Get(ctx, id)
	if err != nil {
		t.Fatalf("a.Get() error = %v", err)
	}
	if _, ok := onA.Analysis().Contact("cfo"); ok {
		t.Fatal("instance a still serves the deleted contact")
	}
	if onA.Revision() != 2 {
		t.Errorf("Revision() = %d, want 2", onA.Revision())
	}

	if !onA.Reposition(ctx, "cto", 10, 0, 1) {
		t.Fatal("Reposition() = false")
	}
	if err := a.Save(ctx, onA); err != nil {
		t.Fatalf("a.Save() error = %v", err)
	}
	rec, _ := store.Get(ctx, id)
	if _, ok := rec.Analysis.Contact("cfo"); ok {
		t.Error("saving on instance a brought the deleted contact back")
	}
	if rec.Revision != 3 {
		t.Errorf("stored revision = %d, want 3", rec.Revision)
	}
}

func TestManager_StaleSaveIsSuperseded(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := NewManager(store, testRunner(), pipeline.Options{})
	b := NewManager(store, testRunner(), pipeline.Options{})

	stale, err := a.Create(ctx, testAnalysis(), "")
	if err != nil {
		t.Fatal(err)
	}
	fresh, err := b.Get(ctx, stale.ID())
	if err != nil {
		t.Fatal(err)
	}
	fresh.Delete(ctx, "cfo")
	if err := b.Save(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	// a still holds the revision-1 copy it created.
	stale.Delete(ctx, "eng1")
	if err := a.Save(ctx, stale); !errors.Is(err, errors.ErrCodeSuperseded) {
		t.Fatalf("stale Save() error = %v, want SUPERSEDED", err)
	}
	rec, _ := store.Get(ctx, stale.ID())
	if _, ok := rec.Analysis.Contact("eng1"); !ok {
		t.Error("stale save overwrote the stored record")
	}

	reloaded, err := a.Get(ctx, stale.ID())
	if err != nil {
		t.Fatal(err)
	}
	if reloaded == stale {
		t.Error("Get() returned the superseded live copy")
	}
	if _, ok := reloaded.Analysis().Contact("cfo"); ok {
		t.Error("reloaded session still has cfo")
	}
}

func TestManager_EvictsIdleAndExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, testRunner(), pipeline.Options{})

	idle, err := m.Create(ctx, testAnalysis(), "")
	if err != nil {
		t.Fatal(err)
	}
	m.mu.Lock()
	m.live[idle.ID()].lastUsed = time.Now().Add(-2 * m.ttl)
	m.mu.Unlock()

	active, err := m.Create(ctx, testAnalysis(), "")
	if err != nil {
		t.Fatal(err)
	}
	if m.Live() != 1 {
		t.Errorf("Live() = %d, want 1 after idle eviction", m.Live())
	}

	// An evicted session is still restorable from the store.
	if _, err := m.Get(ctx, idle.ID()); err != nil {
		t.Errorf("Get(idle) error = %v", err)
	}

	rec, _ := store.Get(ctx, active.ID())
	rec.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, active.ID()); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(expired) error = %v", err)
	}
	if m.Live() != 1 {
		t.Errorf("Live() = %d, want 1 after expiry", m.Live())
	}
}

func TestManager_CreateEmpty(t *testing.T) {
	m := NewManager(nil, nil, pipeline.Options{})
	if _, err := m.Create(context.Background(), contact.Analysis{}, ""); !errors.Is(err, errors.ErrCodeNoStakeholders) {
		t.Errorf("error = %v", err)
	}
}
