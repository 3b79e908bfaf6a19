package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleProject = `{
	"info": {"name": "bandit", "version": "1.7.5"},
	"releases": {
		"1.7.3": [{"yanked": false}],
		"1.7.4": [{"yanked": false}, {"yanked": false}],
		"1.7.5": [{"yanked": false}],
		"1.7.4.post1": [{"yanked": true}],
		"0.0.0-broken": []
	}
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5, "")
}

func TestProject(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bandit/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Write([]byte(sampleProject))
	})

	p, err := client.Project(context.Background(), "bandit")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	if p.Name != "bandit" || p.Latest != "1.7.5" {
		t.Errorf("got name=%q latest=%q", p.Name, p.Latest)
	}
	if len(p.Releases) != 5 {
		t.Fatalf("expected 5 releases, got %d", len(p.Releases))
	}

	if !p.HasRelease("1.7.4") {
		t.Errorf("HasRelease(1.7.4) = false")
	}
	if p.HasRelease("9.9.9") {
		t.Errorf("HasRelease(9.9.9) = true")
	}

	if !p.ReleaseYanked("1.7.4.post1") {
		t.Errorf("release with all files yanked should report yanked")
	}
	if p.ReleaseYanked("1.7.4") {
		t.Errorf("release with live files must not report yanked")
	}
	if p.ReleaseYanked("0.0.0-broken") {
		t.Errorf("release with no files must not report yanked")
	}

	// Ascending order, unparseable strings first.
	last := p.Releases[len(p.Releases)-1]
	if last.Version != "1.7.5" {
		t.Errorf("expected 1.7.5 last after sorting, got %q", last.Version)
	}
}

func TestProject_NotFound(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Project(context.Background(), "no-such-package")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProject_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Project(context.Background(), "anything")
	if err == nil {
		t.Fatalf("expected error on 502")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("502 must not map to ErrNotFound")
	}
}

func TestProject_BearerAuth(t *testing.T) {
	t.Setenv("PINDOWN_TEST_TOKEN", "sekrit")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"info": {"name": "x", "version": "1.0"}, "releases": {}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5, "PINDOWN_TEST_TOKEN")
	if _, err := client.Project(context.Background(), "x"); err != nil {
		t.Fatalf("Project: %v", err)
	}
}
