package footage

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"adstudio/internal/domain"
	"adstudio/internal/infra"
)

const (
	defaultBaseURL = "https://api.pexels.com"
	defaultTimeout = 30 * time.Second

	// PerPage is the number of candidates considered per search.
	PerPage = 5
	// FallbackQuery is searched once when the keywords find nothing.
	FallbackQuery = "abstract vertical business background"

	minHDWidth = 1280
)

// VideoFile is one encoding of a stock video.
type VideoFile struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
}

// Video is a stock video search hit.
type Video struct {
	ID         int64       `json:"id"`
	Duration   int         `json:"duration"`
	VideoFiles []VideoFile `json:"video_files"`
}

type searchResponse struct {
	Videos []Video `json:"videos"`
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// Rand drives candidate selection. Tests pin it with a fixed seed.
	Rand *rand.Rand
}

// Pexels resolves keywords to a portrait stock video link.
type Pexels struct {
	baseURL string
	client  *http.Client
	logger  *infra.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewPexels(opts Options) *Pexels {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	rng := opts.Rand
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>17|1))
	}
	return &Pexels{baseURL: baseURL, client: client, logger: infra.OrNop(opts.Logger), rng: rng}
}

// Resolve searches for keywords and returns a direct media link chosen at
// random among the results. When the keywords find nothing the fallback query
// is tried exactly once.
func (p *Pexels) Resolve(ctx context.Context, keywords, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: pexels api key", domain.ErrMissingCredential)
	}

	videos, primaryErr := p.search(ctx, keywords, key)
	if primaryErr != nil {
		p.logger.Warn().Err(primaryErr).Str("query", keywords).Msg("footage: search failed, trying fallback")
	}
	if len(videos) == 0 {
		var fallbackErr error
		videos, fallbackErr = p.search(ctx, FallbackQuery, key)
		if fallbackErr != nil {
			if primaryErr != nil {
				return "", fmt.Errorf("%w: pexels search: %v", domain.ErrProviderCall, fallbackErr)
			}
			p.logger.Warn().Err(fallbackErr).Msg("footage: fallback search failed")
		}
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("%w: %q and fallback returned no videos", domain.ErrNoFootageFound, keywords)
	}

	chosen := videos[p.pick(len(videos))]
	file, _ := PickFile(chosen)
	p.logger.Debug().Int64("video_id", chosen.ID).Str("quality", file.Quality).Int("width", file.Width).Msg("footage: selected")
	return file.Link, nil
}

// PickFile prefers the first HD encoding at least 1280 wide, otherwise the
// first encoding.
func PickFile(v Video) (VideoFile, bool) {
	if hd, ok := lo.Find(v.VideoFiles, func(f VideoFile) bool {
		return f.Quality == "hd" && f.Width >= minHDWidth
	}); ok {
		return hd, true
	}
	return lo.First(v.VideoFiles)
}

func (p *Pexels) pick(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

func (p *Pexels) search(ctx context.Context, query, key string) ([]Video, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(PerPage))
	params.Set("orientation", "portrait")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", key)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pexels status %d", resp.StatusCode)
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return lo.Filter(out.Videos, func(v Video, _ int) bool {
		_, ok := PickFile(v)
		return ok
	}), nil
}
