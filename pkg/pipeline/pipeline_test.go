package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/contact"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/layout"
	"github.com/matzehuels/orgtower/pkg/render"
)

func testAnalysis() contact.Analysis {
	return contact.Analysis{
		AccountName: "Acme",
		Contacts: []contact.Contact{
			{ID: "ceo", Name: "Ada", SeniorityRank: 1, Department: "Executive"},
			{ID: "cto", Name: "Bo", ManagerID: contact.Ref("ceo"), SeniorityRank: 2, Department: "Engineering"},
			{ID: "eng", Name: "Cy", ManagerID: contact.Ref("cto"), SeniorityRank: 4, Department: "Engineering"},
			{ID: "cfo", Name: "Di", ManagerID: contact.Ref("ceo"), SeniorityRank: 2, Department: "Finance"},
			{ID: "cfo", Name: "Dup", SeniorityRank: 1},
			{ID: "loop", Name: "El", ManagerID: contact.Ref("loop"), SeniorityRank: 3},
		},
	}
}

func testRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"graphviz", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{NodeWidth: -5, VerticalSpacing: 10}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.NodeWidth != layout.DefaultNodeWidth {
		t.Errorf("NodeWidth = %v, want %v", opts.NodeWidth, layout.DefaultNodeWidth)
	}
	if opts.VerticalSpacing != 10 {
		t.Errorf("VerticalSpacing = %v, want 10", opts.VerticalSpacing)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	// Idempotent
	opts.Formats = []string{"bogus"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call error = %v", err)
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad format", Options{Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
		{"control character in department", Options{Department: "Eng\x00"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	built, err := Build(context.Background(), testAnalysis(), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := built.Tree.ContactCount(); got != 5 {
		t.Errorf("ContactCount() = %d, want 5", got)
	}
	if built.Report.Duplicates != 1 || built.Report.SelfLoops != 1 {
		t.Errorf("Report = %+v", built.Report)
	}
	if diff := cmp.Diff([]string{"cto", "ceo"}, built.Tree.Ancestors("eng")[:2]); diff != "" {
		t.Errorf("Ancestors(eng) mismatch (-want +got):\n%s", diff)
	}
	if c, _ := built.Analysis.Contact("loop"); c.Department != contact.DefaultDepartment {
		t.Errorf("analysis not normalized: department = %q", c.Department)
	}
}

func TestBuild_NoStakeholders(t *testing.T) {
	_, err := Build(context.Background(), contact.Analysis{AccountName: "Empty"}, Options{})
	if !errors.Is(err, errors.ErrCodeNoStakeholders) {
		t.Fatalf("error = %v, want NO_STAKEHOLDERS", err)
	}
	if errors.UserMessage(err) != "no stakeholders identified" {
		t.Errorf("UserMessage() = %q", errors.UserMessage(err))
	}
}

func TestBuild_DepartmentFilter(t *testing.T) {
	built, err := Build(context.Background(), testAnalysis(), Options{Department: "Engineering"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := built.Tree.Children(built.Tree.RootID()); !cmp.Equal(got, []string{"cto"}) {
		t.Errorf("top level = %v, want [cto]", got)
	}
	if built.Report.Dangling != 1 {
		t.Errorf("Dangling = %d, want 1 (cto's manager is outside the filter)", built.Report.Dangling)
	}
	if len(built.Analysis.Contacts) != 6 {
		t.Error("filter leaked into the canonical analysis")
	}
}

func TestBuild_FilterMatchesNobody(t *testing.T) {
	built, err := Build(context.Background(), testAnalysis(), Options{Department: "engineering"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if built.Tree.ContactCount() != 0 {
		t.Errorf("ContactCount() = %d, want 0", built.Tree.ContactCount())
	}
}

func TestTreeHash_IgnoresRootID(t *testing.T) {
	ctx := context.Background()
	a, _ := Build(ctx, testAnalysis(), Options{})
	b, _ := Build(ctx, testAnalysis(), Options{})
	if a.Tree.RootID() == b.Tree.RootID() {
		t.Fatal("root ids should differ between builds")
	}
	if TreeHash(a.Tree) != TreeHash(b.Tree) {
		t.Error("TreeHash depends on the root id")
	}

	c, _ := Build(ctx, testAnalysis(), Options{Department: "Engineering"})
	if TreeHash(a.Tree) == TreeHash(c.Tree) {
		t.Error("different trees share a hash")
	}
}

func TestRelabelRoot(t *testing.T) {
	built, _ := Build(context.Background(), testAnalysis(), Options{RootID: "__root__:a"})
	l := GenerateLayout(built.Tree, Options{})

	data, err := marshalLayout(l)
	if err != nil {
		t.Fatalf("marshalLayout() error = %v", err)
	}
	if strings.Contains(string(data), "__root__:a") {
		t.Error("cached layout contains the root id")
	}

	got, err := unmarshalLayout(data, "__root__:b")
	if err != nil {
		t.Fatalf("unmarshalLayout() error = %v", err)
	}
	if got.RootID != "__root__:b" || !got.Has("__root__:b") {
		t.Errorf("RootID = %q", got.RootID)
	}
	ceo, _ := got.Position("ceo")
	if ceo.ParentID != "__root__:b" {
		t.Errorf("ceo.ParentID = %q", ceo.ParentID)
	}
	want, _ := l.Position("eng")
	if g, _ := got.Position("eng"); g != want {
		t.Errorf("eng = %+v, want %+v", g, want)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := testRunner(nil)
	result, err := r.Execute(context.Background(), testAnalysis(), Options{Formats: []string{"svg", "json", "dot"}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, f := range []string{"svg", "json", "dot"} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if result.Stats.Nodes != 5 || result.Stats.Contacts != 6 || result.Stats.Rerouted != 1 {
		t.Errorf("Stats = %+v", result.Stats)
	}
	if result.Stats.Depth != 3 {
		t.Errorf("Depth = %d, want 3", result.Stats.Depth)
	}
	if len(result.Document.Nodes) != 5 {
		t.Errorf("Document nodes = %d, want 5", len(result.Document.Nodes))
	}

	var doc render.Document
	if err := json.Unmarshal(result.Artifacts["json"], &doc); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if doc.AccountName != "Acme" || doc.Report == nil || doc.Report.Duplicates != 1 {
		t.Errorf("json artifact = %+v", doc)
	}
}

func TestRunnerExecute_Errors(t *testing.T) {
	r := testRunner(nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, testAnalysis(), Options{Formats: []string{"pdf"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad format error = %v", err)
	}
	if _, err := r.Execute(ctx, contact.Analysis{}, Options{}); !errors.Is(err, errors.ErrCodeNoStakeholders) {
		t.Errorf("empty analysis error = %v", err)
	}
}

func TestRunnerCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := testRunner(fc)
	ctx := context.Background()

	first, err := r.Execute(ctx, testAnalysis(), Options{})
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, testAnalysis(), Options{})
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v", second.CacheInfo)
	}
	if second.Layout.RootID != second.Tree.RootID() {
		t.Errorf("cached layout root = %q, tree root = %q", second.Layout.RootID, second.Tree.RootID())
	}
	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("documents differ (-first +second):\n%s", diff)
	}

	refreshed, err := r.Execute(ctx, testAnalysis(), Options{Refresh: true})
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v", refreshed.CacheInfo)
	}

	wide, _ := r.Execute(ctx, testAnalysis(), Options{NodeWidth: 300})
	if wide.CacheInfo.LayoutHit {
		t.Error("layout options not part of the cache key")
	}
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, err := Render(context.Background(), render.Scene{}, render.Meta{}, Options{Formats: []string{"png"}})
	if err == nil {
		t.Error("Render() accepted png")
	}
}
