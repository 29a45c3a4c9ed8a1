package youtubeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/api/option"
)

func newSearchServer(t *testing.T, items []map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("eventType"); got != "live" {
			t.Errorf("expected eventType=live, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListLivePreservesOrder(t *testing.T) {
	srv := newSearchServer(t, []map[string]any{
		{"id": map[string]string{"videoId": "1"}, "snippet": map[string]string{"title": "Foo [SILVERCORD - L]"}},
		{"id": map[string]string{"videoId": "2"}, "snippet": map[string]string{"title": "Bar [SILVERCORD - L]"}},
	})

	c := New("test-key", "UCchannel", option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
	got, err := c.ListLive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("order not preserved: %+v", got)
	}
}

func TestListLiveEmptyChannel(t *testing.T) {
	c := New("k", "")
	if _, err := c.ListLive(context.Background()); err == nil {
		t.Fatal("expected error for empty channel id")
	}
}

func TestListLiveNoResults(t *testing.T) {
	srv := newSearchServer(t, nil)
	c := New("k", "UCchannel", option.WithEndpoint(srv.URL), option.WithHTTPClient(srv.Client()))
	got, err := c.ListLive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no broadcasts, got %d", len(got))
	}
}
