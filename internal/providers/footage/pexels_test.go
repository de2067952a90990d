package footage

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"adstudio/internal/domain"
)

type searchServer struct {
	mu      sync.Mutex
	queries []string
	results map[string]string
	status  int
}

func (s *searchServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := r.URL.Query()
	s.queries = append(s.queries, q.Get("query"))
	if q.Get("per_page") != "5" || q.Get("orientation") != "portrait" || r.Header.Get("Authorization") != "px-key" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}
	body, ok := s.results[q.Get("query")]
	if !ok {
		body = `{"videos":[]}`
	}
	_, _ = w.Write([]byte(body))
}

func videosJSON(ids ...int) string {
	out := `{"videos":[`
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"id":%d,"video_files":[{"quality":"sd","width":640,"link":"https://v/%d/sd"},{"quality":"hd","width":720,"link":"https://v/%d/hd720"},{"quality":"hd","width":1920,"link":"https://v/%d/hd"}]}`, id, id, id, id)
	}
	return out + "]}"
}

func TestPickFile(t *testing.T) {
	tests := []struct {
		name  string
		files []VideoFile
		want  string
	}{
		{
			name:  "first wide hd",
			files: []VideoFile{{Quality: "sd", Width: 640, Link: "sd"}, {Quality: "hd", Width: 1280, Link: "hd1"}, {Quality: "hd", Width: 1920, Link: "hd2"}},
			want:  "hd1",
		},
		{
			name:  "narrow hd falls back to first",
			files: []VideoFile{{Quality: "sd", Width: 640, Link: "sd"}, {Quality: "hd", Width: 1080, Link: "hd"}},
			want:  "sd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickFile(Video{VideoFiles: tt.files})
			if !ok || got.Link != tt.want {
				t.Fatalf("PickFile = %q, want %q", got.Link, tt.want)
			}
		})
	}
	if _, ok := PickFile(Video{}); ok {
		t.Fatal("expected no file for empty video")
	}
}

func TestResolvePrimaryHit(t *testing.T) {
	srv := &searchServer{results: map[string]string{"calm office": videosJSON(1, 2, 3)}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	p := NewPexels(Options{BaseURL: ts.URL, HTTPClient: ts.Client(), Rand: rand.New(rand.NewPCG(1, 2))})
	link, err := p.Resolve(context.Background(), "calm office", "px-key")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	valid := map[string]bool{"https://v/1/hd": true, "https://v/2/hd": true, "https://v/3/hd": true}
	if !valid[link] {
		t.Fatalf("link = %q, want an hd link from the results", link)
	}
	if len(srv.queries) != 1 {
		t.Fatalf("queries = %v, want primary only", srv.queries)
	}
}

func TestResolveSelectionIsDeterministicWithSeed(t *testing.T) {
	srv := &searchServer{results: map[string]string{"sunrise": videosJSON(1, 2, 3, 4, 5)}}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resolve := func() []string {
		p := NewPexels(Options{BaseURL: ts.URL, HTTPClient: ts.Client(), Rand: rand.New(rand.NewPCG(42, 7))})
		var links []string
		for i := 0; i < 5; i++ {
			link, err := p.Resolve(context.Background(), "sunrise", "px-key")
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			links = append(links, link)
		}
		return links
	}
	first, second := resolve(), resolve()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("selection differs with the same seed: %v vs %v", first, second)
		}
	}
}

func TestResolveFallbackIssuedOnce(t *testing.T) {
	tests := []struct {
		name     string
		results  map[string]string
		wantErr  error
		wantLink string
	}{
		{
			name:     "fallback succeeds",
			results:  map[string]string{FallbackQuery: videosJSON(9)},
			wantLink: "https://v/9/hd",
		},
		{
			name:    "fallback empty",
			results: map[string]string{},
			wantErr: domain.ErrNoFootageFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := &searchServer{results: tt.results}
			ts := httptest.NewServer(srv)
			defer ts.Close()

			p := NewPexels(Options{BaseURL: ts.URL, HTTPClient: ts.Client(), Rand: rand.New(rand.NewPCG(1, 1))})
			link, err := p.Resolve(context.Background(), "nothing matches this", "px-key")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Resolve error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil || link != tt.wantLink {
				t.Fatalf("Resolve = (%q, %v), want %q", link, err, tt.wantLink)
			}
			if len(srv.queries) != 2 || srv.queries[1] != FallbackQuery {
				t.Fatalf("queries = %v, want primary then one fallback", srv.queries)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	p := NewPexels(Options{})
	if _, err := p.Resolve(context.Background(), "x", ""); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("error = %v, want ErrMissingCredential", err)
	}

	srv := &searchServer{status: http.StatusUnauthorized}
	ts := httptest.NewServer(srv)
	defer ts.Close()
	p = NewPexels(Options{BaseURL: ts.URL, HTTPClient: ts.Client()})
	if _, err := p.Resolve(context.Background(), "x", "px-key"); !errors.Is(err, domain.ErrProviderCall) {
		t.Fatalf("error = %v, want ErrProviderCall", err)
	}
	if len(srv.queries) != 2 {
		t.Fatalf("queries = %v, want 2", srv.queries)
	}
}

func TestDownload(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("mp4-bytes"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	d := NewDownloader(ts.Client())
	dest := filepath.Join(dir, "seg_0_video.mp4")
	if err := d.Download(context.Background(), ts.URL+"/clip.mp4", dest); err != nil {
		t.Fatalf("Download error: %v", err)
	}
	raw, err := os.ReadFile(dest)
	if err != nil || string(raw) != "mp4-bytes" {
		t.Fatalf("downloaded %q, %v", raw, err)
	}

	missing := filepath.Join(dir, "missing.mp4")
	if err := d.Download(context.Background(), ts.URL+"/missing", missing); !errors.Is(err, domain.ErrProviderCall) {
		t.Fatalf("error = %v, want ErrProviderCall", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("file created for failed download")
	}
}
