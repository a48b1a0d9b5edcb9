package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"github.com/jamwave/player/internal/domain"
)

const searchCacheSize = 128

var ErrUnexpectedStatus = fmt.Errorf("unexpected response status")

// Client fetches and normalizes track, album and playlist records from the
// backend API. Records without a usable audio locator are dropped, never
// played.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger

	mu          sync.RWMutex
	token       string
	searchCache *lru.Cache[string, SearchResults]
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	cache, _ := lru.New[string, SearchResults](searchCacheSize)

	return &Client{
		baseURL:     baseURL,
		httpc:       &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
		searchCache: cache,
	}
}

// SetToken installs the session token used for authenticated endpoints.
// Search results are cached only while a token is present.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

type FetchTracksParams struct {
	Sort          string
	Order         string
	Limit         int
	Offset        int
	Genre         string
	MinDuration   int
	MaxDuration   int
	MinPopularity int
}

func (p FetchTracksParams) values() url.Values {
	v := url.Values{}
	v.Set("sort", lo.CoalesceOrEmpty(p.Sort, "title"))
	v.Set("order", lo.CoalesceOrEmpty(p.Order, "asc"))
	if p.Limit <= 0 {
		p.Limit = 20
	}
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("offset", strconv.Itoa(p.Offset))
	if p.Genre != "" {
		v.Set("genre", p.Genre)
	}
	if p.MinDuration > 0 {
		v.Set("minDuration", strconv.Itoa(p.MinDuration))
	}
	if p.MaxDuration > 0 {
		v.Set("maxDuration", strconv.Itoa(p.MaxDuration))
	}
	if p.MinPopularity > 0 {
		v.Set("minPopularity", strconv.Itoa(p.MinPopularity))
	}

	return v
}

// FetchTracks returns an ordered, normalized track list.
func (c *Client) FetchTracks(ctx context.Context, params FetchTracksParams) ([]domain.Track, error) {
	var payload []trackPayload
	if err := c.getJSON(ctx, "/tracks?"+params.values().Encode(), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch tracks: %w", err)
	}

	return c.normalizeTracks(payload), nil
}

func (c *Client) FetchTrackByID(ctx context.Context, id string) (domain.Track, error) {
	var payload trackPayload
	if err := c.getJSON(ctx, "/tracks/"+url.PathEscape(id), &payload); err != nil {
		return domain.Track{}, fmt.Errorf("failed to fetch track: %w", err)
	}

	return payload.toDomain(), nil
}

func (c *Client) FetchSimilarTracks(ctx context.Context, id string) ([]domain.Track, error) {
	var payload []trackPayload
	if err := c.getJSON(ctx, "/tracks/"+url.PathEscape(id)+"/similar", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch similar tracks: %w", err)
	}

	return c.normalizeTracks(payload), nil
}

func (c *Client) FetchAlbums(ctx context.Context) ([]Album, error) {
	var payload []albumPayload
	if err := c.getJSON(ctx, "/albums", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch albums: %w", err)
	}

	albums := lo.Map(payload, func(p albumPayload, _ int) Album {
		return p.toAlbum(c.normalizeTracks(p.Tracks))
	})

	return albums, nil
}

func (c *Client) FetchAlbumByID(ctx context.Context, id string) (Album, error) {
	var payload albumPayload
	if err := c.getJSON(ctx, "/albums/"+url.PathEscape(id), &payload); err != nil {
		return Album{}, fmt.Errorf("failed to fetch album: %w", err)
	}

	return payload.toAlbum(c.normalizeTracks(payload.Tracks)), nil
}

func (c *Client) FetchPlaylists(ctx context.Context) ([]Playlist, error) {
	var payload []playlistPayload
	if err := c.getJSON(ctx, "/playlists", &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	playlists := lo.Map(payload, func(p playlistPayload, _ int) Playlist {
		return Playlist{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			CreatedBy:   p.CreatedBy,
			Tracks:      c.normalizeTracks(p.Tracks),
		}
	})

	return playlists, nil
}

// normalizeTracks maps wire records to domain tracks, dropping anything
// without an audio source.
func (c *Client) normalizeTracks(payload []trackPayload) []domain.Track {
	tracks := lo.Map(payload, func(p trackPayload, _ int) domain.Track { return p.toDomain() })

	playable := lo.Filter(tracks, func(t domain.Track, _ int) bool { return t.HasAudio() })
	if dropped := len(tracks) - len(playable); dropped > 0 {
		c.logger.Warn("dropped tracks without audio source", "dropped", dropped)
	}

	return playable
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
