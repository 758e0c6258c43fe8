package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/pipeline"
	"github.com/matzehuels/orgtower/pkg/render"
	"github.com/matzehuels/orgtower/pkg/session"
)

const testAnalysis = `{
  "accountName": "Acme",
  "contacts": [
    {"id": "ceo", "name": "Ada", "seniorityRank": 1, "department": "Executive"},
    {"id": "cto", "name": "Bo", "managerId": "ceo", "seniorityRank": 2, "department": "Engineering"},
    {"id": "eng", "name": "Cy", "managerId": "cto", "seniorityRank": 4, "department": "Engineering"},
    {"id": "cfo", "name": "Ed", "managerId": "ceo", "seniorityRank": 3, "department": "Finance"}
  ]
}`

func newTestServer(t *testing.T, store session.Store) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := httptest.NewServer(New(session.NewManager(store, runner, pipeline.Options{}), logger))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func create(t *testing.T, srv *httptest.Server) CreateResponse {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/v1/sessions", testAnalysis)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	return decode[CreateResponse](t, resp)
}

func nodeIDs(doc render.Document) []string {
	ids := make([]string, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func findNode(doc render.Document, id string) (render.DocumentNode, bool) {
	for _, n := range doc.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return render.DocumentNode{}, false
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateAndGet(t *testing.T) {
	srv := newTestServer(t, nil)
	created := create(t, srv)

	if created.ID == "" {
		t.Fatal("empty session id")
	}
	if diff := cmp.Diff([]string{"ceo", "cto", "eng", "cfo"}, nodeIDs(created.Document)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}

	resp := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if diff := cmp.Diff(created.Document, decode[render.Document](t, resp)); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestCreate_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		url    string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed json", "/v1/sessions", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"empty body", "/v1/sessions", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"no contacts", "/v1/sessions", `{"accountName": "Acme", "contacts": []}`, http.StatusUnprocessableEntity, errors.ErrCodeNoStakeholders},
		{"bad department", "/v1/sessions?department=%01", testAnalysis, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+tt.url, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decode[ErrorResponse](t, resp); got.Code != tt.code || got.Message == "" {
				t.Errorf("error = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestGet_UnknownSession(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, http.MethodGet, srv.URL+"/v1/sessions/nope", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if got := decode[ErrorResponse](t, resp); got.Code != errors.ErrCodeSessionNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestGet_DepartmentFilter(t *testing.T) {
	srv := newTestServer(t, nil)
	id := create(t, srv).ID

	doc := decode[render.Document](t, do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"?department=Engineering", ""))
	if diff := cmp.Diff([]string{"cto", "eng"}, nodeIDs(doc)); diff != "" {
		t.Errorf("filtered nodes mismatch (-want +got):\n%s", diff)
	}

	// The filter sticks until changed.
	doc = decode[render.Document](t, do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id, ""))
	if doc.Department != "Engineering" {
		t.Errorf("Department = %q", doc.Department)
	}

	doc = decode[render.Document](t, do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"?department=", ""))
	if len(doc.Nodes) != 4 {
		t.Errorf("clearing the filter left %d nodes", len(doc.Nodes))
	}

	depts := decode[map[string]any](t, do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"/departments", ""))
	if diff := cmp.Diff([]any{"Engineering", "Executive", "Finance"}, depts["departments"]); diff != "" {
		t.Errorf("departments mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteContact(t *testing.T) {
	srv := newTestServer(t, nil)
	id := create(t, srv).ID
	url := srv.URL + "/v1/sessions/" + id + "/contacts/"

	resp := do(t, http.MethodDelete, url+"cto", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	doc := decode[render.Document](t, resp)
	if _, ok := findNode(doc, "cto"); ok {
		t.Error("cto still present")
	}
	if eng, _ := findNode(doc, "eng"); eng.ParentID != "ceo" {
		t.Errorf("eng.ParentID = %q, want ceo", eng.ParentID)
	}

	// Unknown ids are a no-op.
	resp = do(t, http.MethodDelete, url+"ghost", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("no-op delete status = %d", resp.StatusCode)
	}
	if got := decode[render.Document](t, resp); len(got.Nodes) != 3 {
		t.Errorf("no-op delete left %d nodes", len(got.Nodes))
	}
}

func TestReposition(t *testing.T) {
	srv := newTestServer(t, nil)
	created := create(t, srv)
	before, _ := findNode(created.Document, "cfo")
	url := srv.URL + "/v1/sessions/" + created.ID + "/positions/"

	resp := do(t, http.MethodPost, url+"cfo", `{"dx": 40, "dy": 20, "zoom": 2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	after, _ := findNode(decode[render.Document](t, resp), "cfo")
	if after.X != before.X+20 || after.Y != before.Y+10 || !after.Moved {
		t.Errorf("cfo moved from (%v, %v) to %+v", before.X, before.Y, after)
	}

	// Stale ids are dropped without an error.
	resp = do(t, http.MethodPost, url+"ghost", `{"dx": 1, "dy": 1}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("stale reposition status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, url+"cfo", `{"dx": 1, "dy": 1, "zoom": -1}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative zoom status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, url+"cfo", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d", resp.StatusCode)
	}
}

func TestArtifacts(t *testing.T) {
	srv := newTestServer(t, nil)
	id := create(t, srv).ID

	tests := []struct {
		format      string
		contentType string
		contains    string
	}{
		{"svg", "image/svg+xml", "<svg"},
		{"dot", "text/vnd.graphviz", "digraph"},
		{"json", "application/json", `"nodes"`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"/artifacts/"+tt.format, "")
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q", got)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.Contains(body, []byte(tt.contains)) {
				t.Errorf("body does not contain %q", tt.contains)
			}
		})
	}

	resp := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id+"/artifacts/png", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("png status = %d", resp.StatusCode)
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer(t, nil)
	id := create(t, srv).ID

	if resp := do(t, http.MethodDelete, srv.URL+"/v1/sessions/"+id, ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, srv.URL+"/v1/sessions/"+id, ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete status = %d", resp.StatusCode)
	}
}

// Two instances sharing a Redis store see each other's sessions and edits.
func TestSharedRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	newStore := func() session.Store {
		store, err := session.NewRedisStore(context.Background(), "redis://"+mr.Addr())
		if err != nil {
			t.Fatal(err)
		}
		return store
	}
	a := newTestServer(t, newStore())
	b := newTestServer(t, newStore())

	created := create(t, a)
	do(t, http.MethodDelete, fmt.Sprintf("%s/v1/sessions/%s/contacts/cfo", a.URL, created.ID), "")
	do(t, http.MethodPost, fmt.Sprintf("%s/v1/sessions/%s/positions/eng", a.URL, created.ID), `{"dx": 100, "dy": 0, "zoom": 1}`)
	want := decode[render.Document](t, do(t, http.MethodGet, a.URL+"/v1/sessions/"+created.ID, ""))

	resp := do(t, http.MethodGet, b.URL+"/v1/sessions/"+created.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if diff := cmp.Diff(want, decode[render.Document](t, resp)); diff != "" {
		t.Errorf("document on second instance mismatch (-want +got):\n%s", diff)
	}

	// An edit on b is visible on a, which must not write the old tree back.
	do(t, http.MethodDelete, fmt.Sprintf("%s/v1/sessions/%s/contacts/eng", b.URL, created.ID), "")
	do(t, http.MethodPost, fmt.Sprintf("%s/v1/sessions/%s/positions/cto", a.URL, created.ID), `{"dx": 5, "dy": 0, "zoom": 1}`)
	for _, srv := range []*httptest.Server{a, b} {
		doc := decode[render.Document](t, do(t, http.MethodGet, srv.URL+"/v1/sessions/"+created.ID, ""))
		for _, n := range doc.Nodes {
			if n.ID == "eng" {
				t.Errorf("%s still serves deleted contact eng", srv.URL)
			}
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeSessionNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeSuperseded, "x"), http.StatusConflict},
		{errors.New(errors.ErrCodeStructural, "x"), http.StatusInternalServerError},
		{fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
