package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/lo"

	"github.com/jamwave/player/internal/domain"
)

// SearchResults groups the per-kind matches for a query.
type SearchResults struct {
	Tracks    []domain.Track `json:"tracks"`
	Artists   []Artist       `json:"artists"`
	Albums    []Album        `json:"albums"`
	Playlists []Playlist     `json:"playlists"`
}

type searchPayload struct {
	Tracks    []trackPayload    `json:"tracks"`
	Artists   []artistPayload   `json:"artists"`
	Albums    []albumPayload    `json:"albums"`
	Playlists []playlistPayload `json:"playlists"`
}

// Search queries the backend across all content kinds. Results are cached in
// a bounded LRU, but only while a session token is present; anonymous
// searches always hit the backend. A 401 yields empty results rather than an
// error, matching how the UI treats an expired session.
func (c *Client) Search(ctx context.Context, query string) (SearchResults, error) {
	c.mu.RLock()
	token := c.token
	if token != "" {
		if cached, ok := c.searchCache.Get(query); ok {
			c.mu.RUnlock()
			return cached, nil
		}
	}
	c.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?q="+url.QueryEscape(query), nil)
	if err != nil {
		return SearchResults{}, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return SearchResults{}, fmt.Errorf("failed to search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return SearchResults{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return SearchResults{}, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload searchPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return SearchResults{}, fmt.Errorf("failed to decode search results: %w", err)
	}

	results := SearchResults{
		Tracks: c.normalizeTracks(payload.Tracks),
		Artists: lo.Map(payload.Artists, func(p artistPayload, _ int) Artist {
			return Artist{ID: p.ID, Name: p.Name, Genre: p.Genre}
		}),
		Albums: lo.Map(payload.Albums, func(p albumPayload, _ int) Album {
			return p.toAlbum(c.normalizeTracks(p.Tracks))
		}),
		Playlists: lo.Map(payload.Playlists, func(p playlistPayload, _ int) Playlist {
			return Playlist{ID: p.ID, Name: p.Name, Description: p.Description}
		}),
	}

	if token != "" {
		c.searchCache.Add(query, results)
	}

	return results, nil
}
