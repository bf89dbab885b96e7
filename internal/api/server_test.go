package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spiritlab/spirit/internal/index"
	"github.com/spiritlab/spirit/internal/store"
)

func testServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"paper.md":   "#! Grand Theory\n\n$$ [eq1] x = 1\n\nbody text",
		"cites.toml": "[knuth84]\ntitle = \"Literate Programming\"\nauthor = \"Knuth\"\nyear = 1984\n",
		"logo.png":   "not really a png",
	}
	for name, src := range files {
		if err := st.Write(name, src); err != nil {
			t.Fatal(err)
		}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	holder := index.NewHolder()
	ix, err := index.Build(context.Background(), st, log)
	if err != nil {
		t.Fatal(err)
	}
	holder.Set(ix)

	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSwitchingProtocols)
	})
	srv := NewServer(st, holder, ws, t.TempDir(), nil, log)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts, st
}

func get(t *testing.T, ts *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Markdown(t *testing.T) {
	ts, _ := testServer(t)
	code, body := get(t, ts, "/md/paper")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if !strings.HasPrefix(body, "#! Grand Theory") {
		t.Errorf("markdown body: %q", body)
	}

	code, _ = get(t, ts, "/md/nope")
	if code != http.StatusNotFound {
		t.Errorf("missing doc: status %d", code)
	}
}

func TestServer_HTMLExport(t *testing.T) {
	ts, _ := testServer(t)
	code, body := get(t, ts, "/html/paper")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Grand Theory", `class="equation"`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in export", want)
		}
	}
}

func TestServer_LatexExport(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/latex/paper")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, `paper.tex`) {
		t.Errorf("disposition: %q", cd)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `\documentclass`) {
		t.Errorf("latex body: %q", body)
	}
}

func TestServer_IndexLookups(t *testing.T) {
	ts, _ := testServer(t)

	code, body := get(t, ts, "/ref/paper:eq1")
	if code != http.StatusOK || body != "Grand Theory: Equation 1" {
		t.Errorf("ref: %d %q", code, body)
	}

	code, body = get(t, ts, "/pop/paper:eq1")
	if code != http.StatusOK || !strings.Contains(body, "math") {
		t.Errorf("pop: %d %q", code, body)
	}

	code, body = get(t, ts, "/cit/cites:knuth84")
	if code != http.StatusOK {
		t.Fatalf("cit: %d", code)
	}
	var cite struct {
		Author string `json:"author"`
		Year   int    `json:"year"`
	}
	if err := json.Unmarshal([]byte(body), &cite); err != nil {
		t.Fatalf("cit json: %v", err)
	}
	if cite.Author != "Knuth" || cite.Year != 1984 {
		t.Errorf("cit: %+v", cite)
	}

	for _, path := range []string{"/ref/none:x", "/pop/none:x", "/cit/none:x"} {
		if code, _ := get(t, ts, path); code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, code)
		}
	}
}

func TestServer_Search(t *testing.T) {
	ts, _ := testServer(t)
	code, body := get(t, ts, "/search/grand")
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	var pairs [][2]string
	if err := json.Unmarshal([]byte(body), &pairs); err != nil {
		t.Fatalf("search json: %v (%q)", err, body)
	}
	if len(pairs) == 0 || pairs[0][0] != "paper" || pairs[0][1] != "Grand Theory" {
		t.Errorf("search results: %v", pairs)
	}
}

func TestServer_Image(t *testing.T) {
	ts, _ := testServer(t)
	code, body := get(t, ts, "/img/logo.png")
	if code != http.StatusOK || body != "not really a png" {
		t.Errorf("img: %d %q", code, body)
	}
	if code, _ := get(t, ts, "/img/absent.png"); code != http.StatusNotFound {
		t.Errorf("missing image: %d", code)
	}
}

func TestServer_DocRedirect(t *testing.T) {
	ts, _ := testServer(t)
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(ts.URL + "/paper")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/?doc=paper" {
		t.Errorf("location: %q", loc)
	}
}
