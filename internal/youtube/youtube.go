// YouTube Data API v3 [Gateway] implementation
//
// Issues search and trending requests with an API key drawn from the key
// rotator, detects quota-exceeded responses, and retries exactly once on a
// freshly rotated key.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

const defaultBaseURL string = "https://www.googleapis.com/youtube/v3"

// musicCategoryID restricts every request to the music category.
const musicCategoryID = "10"

// Quota cost table, fixed per operation kind. A search burns two orders of
// magnitude more budget than a listing lookup.
const (
	CostSearch       = 100
	CostVideoDetails = 1
)

// requestInterval paces outgoing requests; the bulk preset seeding path
// would otherwise burst dozens of searches back to back.
const requestInterval = 300 * time.Millisecond

// KeySource supplies API keys with usage accounting. Implemented by
// [rotator.Rotator].
type KeySource interface {
	RecordUsage(cost int) (string, error)
	Rotate() (string, error)
	Len() int
}

// Gateway talks to the YouTube Data API.
type Gateway struct {
	baseURL    string
	region     string
	httpClient *http.Client
	keys       KeySource
	limiter    *rate.Limiter
	logger     *log.Logger
}

// Opts contains configuration options for creating a Gateway.
type Opts struct {
	BaseURL    string
	Region     string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewGateway creates a Gateway drawing keys from the given source.
func NewGateway(keys KeySource, opts Opts) *Gateway {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Region == "" {
		opts.Region = "US"
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Gateway{
		baseURL:    opts.BaseURL,
		region:     opts.Region,
		httpClient: opts.HTTPClient,
		keys:       keys,
		limiter:    rate.NewLimiter(rate.Every(requestInterval), 1),
		logger:     opts.Logger,
	}
}

// Search returns up to maxResults music videos matching the query.
func (g *Gateway) Search(ctx context.Context, query string, maxResults int) ([]models.Track, error) {
	params := url.Values{
		"part":            {"snippet"},
		"q":               {query},
		"type":            {"video"},
		"videoCategoryId": {musicCategoryID},
		"maxResults":      {strconv.Itoa(maxResults)},
	}
	return g.fetch(ctx, "/search", params, CostSearch)
}

// Trending returns up to maxResults entries from the most-popular music
// chart for the configured region.
func (g *Gateway) Trending(ctx context.Context, maxResults int) ([]models.Track, error) {
	params := url.Values{
		"part":            {"snippet,contentDetails"},
		"chart":           {"mostPopular"},
		"videoCategoryId": {musicCategoryID},
		"regionCode":      {g.region},
		"maxResults":      {strconv.Itoa(maxResults)},
	}
	return g.fetch(ctx, "/videos", params, CostVideoDetails)
}

// fetch runs one logical request: charge the key pool, issue the call, and
// on a quota-exceeded response rotate and retry exactly once. The retry
// bound is the loop, not recursion, so it stays a visible invariant.
func (g *Gateway) fetch(ctx context.Context, endpoint string, params url.Values, cost int) ([]models.Track, error) {
	if g.keys.Len() == 0 {
		return nil, shared.ErrNoCredentialsConfigured
	}

	key, err := g.keys.RecordUsage(cost)
	if err != nil {
		if errors.Is(err, shared.ErrNoCredentials) {
			return nil, shared.ErrNoCredentialsConfigured
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}

	for attempt := 0; ; attempt++ {
		tracks, quotaExceeded, err := g.do(ctx, endpoint, params, key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
		}
		if !quotaExceeded {
			return tracks, nil
		}
		if attempt >= 1 {
			return nil, fmt.Errorf("%w: %w", shared.ErrFetchFailed, shared.ErrQuotaExhausted)
		}

		g.logger.Warn("quota exceeded, rotating to next key", "endpoint", endpoint)
		key, err = g.keys.Rotate()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrFetchFailed, shared.ErrQuotaExhausted)
		}
	}
}

// apiError is the Data API error envelope.
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (e *apiError) quotaExceeded() bool {
	if e.Error.Code != http.StatusForbidden {
		return false
	}
	for _, item := range e.Error.Errors {
		switch item.Reason {
		case "quotaExceeded", "dailyLimitExceeded", "rateLimitExceeded":
			return true
		}
	}
	return strings.Contains(strings.ToLower(e.Error.Message), "quota")
}

type thumbnail struct {
	URL string `json:"url"`
}

type snippet struct {
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	Description  string `json:"description"`
	Thumbnails   struct {
		High    thumbnail `json:"high"`
		Medium  thumbnail `json:"medium"`
		Default thumbnail `json:"default"`
	} `json:"thumbnails"`
}

func (s snippet) thumbnail() string {
	if s.Thumbnails.High.URL != "" {
		return s.Thumbnails.High.URL
	}
	if s.Thumbnails.Medium.URL != "" {
		return s.Thumbnails.Medium.URL
	}
	return s.Thumbnails.Default.URL
}

// itemID handles both response shapes: /search nests the video ID in an
// object, /videos returns it as a plain string.
type itemID struct {
	value string
}

func (id *itemID) UnmarshalJSON(data []byte) error {
	var plain string
	if err := json.Unmarshal(data, &plain); err == nil {
		id.value = plain
		return nil
	}

	var nested struct {
		VideoID string `json:"videoId"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		return err
	}
	id.value = nested.VideoID
	return nil
}

// do issues one HTTP request and maps the response. It reports
// quota-exceeded separately from transport errors so fetch can decide
// whether a retry is worth anything.
func (g *Gateway) do(ctx context.Context, endpoint string, params url.Values, key string) ([]models.Track, bool, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, false, err
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", key)

	apiURL := g.baseURL + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiError
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != 0 {
			if errResp.quotaExceeded() {
				return nil, true, nil
			}
			return nil, false, fmt.Errorf("youtube API error (status %d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return nil, false, fmt.Errorf("youtube API error: status %d", resp.StatusCode)
	}

	var body struct {
		Items []struct {
			ID      itemID  `json:"id"`
			Snippet snippet `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}

	tracks := make([]models.Track, 0, len(body.Items))
	for _, item := range body.Items {
		track := models.Track{
			ID:          item.ID.value,
			Title:       item.Snippet.Title,
			Artist:      item.Snippet.ChannelTitle,
			Thumbnail:   item.Snippet.thumbnail(),
			Description: item.Snippet.Description,
		}
		// Items missing required fields are dropped, never fatal.
		if !track.Valid() {
			continue
		}
		tracks = append(tracks, track)
	}

	return tracks, false, nil
}
