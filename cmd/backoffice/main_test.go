package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/application/stats"
	"github.com/erp/backoffice/internal/domain/listview"
	"github.com/erp/backoffice/internal/infrastructure/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseSets(t *testing.T) {
	got, err := parseSets([]string{"title=Atlas", " phone =+212 5=22", "description="})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"title", "Atlas"}, {"phone", "+212 5=22"}, {"description", ""}}, got)

	for _, bad := range []string{"title", "=value"} {
		_, err := parseSets([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestListOptions_Query(t *testing.T) {
	opts := listOptions{
		search:   "atlas",
		filters:  []string{"status=1"},
		groupBy:  "category",
		dateMode: "specific_month",
		month:    3,
		year:     2026,
	}
	q, err := opts.query()
	require.NoError(t, err)
	assert.Equal(t, "atlas", q.Search)
	assert.Equal(t, "1", q.Filters["status"])
	assert.Equal(t, "category", q.GroupBy)
	assert.Equal(t, listview.WindowMonth, q.Window.Mode)
	assert.Equal(t, time.March, q.Window.Month)

	_, err = listOptions{dateMode: "specific_month", month: 13, year: 2026}.query()
	assert.Error(t, err)
	_, err = listOptions{dateMode: "fortnight"}.query()
	assert.Error(t, err)
}

func TestLookupEntity(t *testing.T) {
	assert.Equal(t, []string{"cotations", "members", "offices", "partners", "services", "tenders", "visitors"}, entityNames())

	e, err := lookupEntity(" Partners ")
	require.NoError(t, err)
	assert.Equal(t, "Partenaires", e.Title())

	_, err = lookupEntity("invoices")
	assert.ErrorContains(t, err, "partners")
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"o\n", true},
		{"Oui\n", true},
		{"yes\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := promptConfirmer{in: bufio.NewReader(strings.NewReader(tt.input)), out: &out}
		got, err := c.Confirm(context.Background(), "Supprimer ?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "[o/N]")
	}

	ok, err := promptConfirmer{assumeYes: true}.Confirm(context.Background(), "Supprimer ?")
	require.NoError(t, err)
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = promptConfirmer{in: bufio.NewReader(strings.NewReader("o\n")), out: io.Discard}.Confirm(ctx, "?")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBars(t *testing.T) {
	out := bars(stats.Chart{
		Labels:   []string{"Client", "Transporteur"},
		Datasets: []stats.Dataset{{Label: "Partenaires", Data: []float64{2, 4}}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, 15, strings.Count(lines[0], "█"))
	assert.Equal(t, 30, strings.Count(lines[1], "█"))
	assert.True(t, strings.HasSuffix(lines[1], " 4"))

	assert.Empty(t, bars(stats.Chart{Title: "vide"}))
}

// fakeAPI serves one partner and records the mutations sent to it
type fakeAPI struct {
	mu      sync.Mutex
	visible int
	calls   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)

	reply := func(status int, env map[string]any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(env)
	}
	record := func() map[string]any {
		return map[string]any{
			"id": "p1", "title": "Atlas Fret", "category_id": "carrier",
			"status": 1, "is_visible": f.visible, "created_at": "2026-03-01T10:00:00Z",
		}
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/partners/p1":
		reply(http.StatusOK, map[string]any{"error": false, "data": record()})
	case r.Method == http.MethodPut && r.URL.Path == "/api/v1/partners/p1":
		var body struct {
			IsVisible int `json:"is_visible"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.visible = body.IsVisible
		reply(http.StatusOK, map[string]any{"error": false, "message": "Statut mis à jour", "data": record()})
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/partners":
		reply(http.StatusUnprocessableEntity, map[string]any{"error": true, "code": "ERR_VALIDATION", "message": "title requis"})
	case r.Method == http.MethodDelete && r.URL.Path == "/api/v1/partners/p1":
		reply(http.StatusOK, map[string]any{"error": false, "message": "Supprimé"})
	default:
		reply(http.StatusNotFound, map[string]any{"error": true, "code": "ERR_NOT_FOUND", "message": "Route introuvable"})
	}
}

func (f *fakeAPI) state() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible, append([]string(nil), f.calls...)
}

func newTestApp(t *testing.T, api http.Handler, input string) (*app, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL, apiclient.WithHTTPClient(srv.Client()), apiclient.WithToken("tok"))
	require.NoError(t, err)
	var out bytes.Buffer
	return &app{
		log:    zap.NewNop(),
		client: c,
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    &out,
		now:    func() time.Time { return time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC) },
	}, &out
}

func TestToggleCommand(t *testing.T) {
	api := &fakeAPI{visible: 1}
	a, out := newTestApp(t, api, "n\no\n")
	e, err := lookupEntity("partners")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, e.Toggle(ctx, a, "p1", toggleOptions{}))
	assert.Contains(t, out.String(), "Annulé")
	visible, calls := api.state()
	assert.Equal(t, 1, visible)
	assert.Equal(t, []string{"GET /api/v1/partners/p1"}, calls, "one read, no mutation")

	require.NoError(t, e.Toggle(ctx, a, "p1", toggleOptions{}))
	visible, _ = api.state()
	assert.Equal(t, 0, visible)
	assert.Contains(t, out.String(), "« Atlas Fret » mis à jour")

	err = e.Toggle(ctx, a, "p1", toggleOptions{field: "title", yes: true})
	assert.ErrorContains(t, err, "ne peut pas être basculé")

	cot, err := lookupEntity("cotations")
	require.NoError(t, err)
	err = cot.Toggle(ctx, a, "c1", toggleOptions{})
	assert.ErrorContains(t, err, "--to")
}

func TestCreateAndDeleteCommands(t *testing.T) {
	api := &fakeAPI{}
	a, out := newTestApp(t, api, "")
	e, err := lookupEntity("partners")
	require.NoError(t, err)
	ctx := context.Background()

	err = e.Create(ctx, a, []string{"colour=blue"})
	assert.ErrorContains(t, err, "champ inconnu")

	err = e.Create(ctx, a, []string{"email=a@b.ma"})
	assert.ErrorIs(t, err, errAlreadyReported)
	_, calls := api.state()
	assert.NotContains(t, calls, "POST /api/v1/partners")

	err = e.Create(ctx, a, []string{"title=Atlas Fret", "category_id=carrier"})
	assert.ErrorIs(t, err, errAlreadyReported)
	_, calls = api.state()
	assert.Contains(t, calls, "POST /api/v1/partners")
	assert.Contains(t, out.String(), "title requis")

	require.NoError(t, e.Delete(ctx, a, "p1", true))
	_, calls = api.state()
	assert.Contains(t, calls, "DELETE /api/v1/partners/p1")
	assert.Contains(t, out.String(), "« Atlas Fret » supprimé")
}
