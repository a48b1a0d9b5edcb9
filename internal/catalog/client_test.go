package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchTracksNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tracks", r.URL.Path)
		assert.Equal(t, "popularity", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"_id":"t1","title":"One","duration":201.5,"audioUrl":"https://cdn.example.com/t1.mp3",
			 "images":{"small":"s.jpg"},
			 "artist":{"_id":"a1","name":"Some Artist"},
			 "album":{"_id":"al1","title":"Some Album"}},
			{"_id":"t2","title":"No Audio","duration":100},
			{"_id":"t3","title":"Bare","duration":90,"audioUrl":"https://cdn.example.com/t3.mp3"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, slog.Default())
	tracks, err := c.FetchTracks(context.Background(), FetchTracksParams{Sort: "popularity", Order: "desc"})
	require.NoError(t, err)

	// the record without an audio locator is dropped
	require.Len(t, tracks, 2)

	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "Some Artist", tracks[0].Artist.Name)
	require.NotNil(t, tracks[0].Album)
	assert.Equal(t, "Some Album", tracks[0].Album.Title)
	assert.Equal(t, "s.jpg", tracks[0].CoverURL())

	// missing artist and images fall back to defaults
	assert.Equal(t, "Unknown Artist", tracks[1].Artist.Name)
	assert.Contains(t, tracks[1].CoverURL(), "placehold")
}

func TestFetchTracksPropagatesErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, slog.Default())
	_, err := c.FetchTracks(context.Background(), FetchTracksParams{})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestSearchUnauthorizedYieldsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, slog.Default())
	results, err := c.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, results.Tracks)
	assert.Empty(t, results.Artists)
}

func TestSearchCachesOnlyWithToken(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tracks":[{"_id":"t1","title":"One","duration":10,"audioUrl":"u.mp3"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, slog.Default())

	// anonymous: every search hits the backend
	_, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	// with a session token the second hit is served from the cache
	c.SetToken("session-token")
	_, err = c.Search(context.Background(), "q")
	require.NoError(t, err)
	results, err := c.Search(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, results.Tracks, 1)
	assert.Equal(t, "t1", results.Tracks[0].ID)
}

func TestFetchAlbumByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/albums/al1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"al1","title":"Album","images":{"medium":"m.jpg"},
			"tracks":[{"_id":"t1","title":"One","duration":10,"audioUrl":"u.mp3"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, slog.Default())
	album, err := c.FetchAlbumByID(context.Background(), "al1")
	require.NoError(t, err)
	assert.Equal(t, "Album", album.Title)
	assert.Equal(t, "m.jpg", album.Images.Medium)
	require.Len(t, album.Tracks, 1)
}
