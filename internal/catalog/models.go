package catalog

import "github.com/jamwave/player/internal/domain"

// Wire shapes returned by the backend API. The backend is inconsistent about
// which fields it populates, so everything optional is a pointer or zero
// value and normalization fills the gaps.

type imagesPayload struct {
	Original  string `json:"original,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Small     string `json:"small,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Large     string `json:"large,omitempty"`
}

type artistPayload struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Genre string `json:"genre,omitempty"`
}

type albumPayload struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Genre       string         `json:"genre,omitempty"`
	ReleaseDate string         `json:"releaseDate,omitempty"`
	Images      *imagesPayload `json:"images,omitempty"`
	Tracks      []trackPayload `json:"tracks,omitempty"`
}

type trackPayload struct {
	ID         string         `json:"_id"`
	Title      string         `json:"title"`
	Duration   float64        `json:"duration"`
	Genre      string         `json:"genre,omitempty"`
	Popularity int            `json:"popularity,omitempty"`
	AudioURL   string         `json:"audioUrl"`
	Images     *imagesPayload `json:"images,omitempty"`
	Artist     *artistPayload `json:"artist,omitempty"`
	Album      *albumPayload  `json:"album,omitempty"`
}

type playlistPayload struct {
	ID          string         `json:"_id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	Tracks      []trackPayload `json:"tracks,omitempty"`
}

// Album is the normalized album record exposed to callers.
type Album struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Genre       string          `json:"genre,omitempty"`
	ReleaseDate string          `json:"release_date,omitempty"`
	Images      domain.ImageSet `json:"images"`
	Tracks      []domain.Track  `json:"tracks,omitempty"`
}

// Playlist is a normalized saved playlist, distinct from the player's
// in-memory playing list.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
	Tracks      []domain.Track `json:"tracks,omitempty"`
}

// Artist is the normalized artist record used in search results.
type Artist struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Genre string `json:"genre,omitempty"`
}

const unknownArtistName = "Unknown Artist"

func (p imagesPayload) toDomain() domain.ImageSet {
	return domain.ImageSet{
		Thumbnail: p.Thumbnail,
		Small:     p.Small,
		Medium:    p.Medium,
		Large:     p.Large,
	}
}

func (p trackPayload) toDomain() domain.Track {
	track := domain.Track{
		ID:         p.ID,
		Title:      p.Title,
		Duration:   p.Duration,
		Genre:      p.Genre,
		Popularity: p.Popularity,
		AudioURL:   p.AudioURL,
		Artist:     domain.ArtistRef{Name: unknownArtistName},
	}

	if p.Images != nil {
		track.Images = p.Images.toDomain()
	}
	if p.Artist != nil {
		track.Artist = domain.ArtistRef{ID: p.Artist.ID, Name: p.Artist.Name}
	}
	if p.Album != nil {
		track.Album = &domain.AlbumRef{ID: p.Album.ID, Title: p.Album.Title}
	}

	return track
}

func (p albumPayload) toAlbum(tracks []domain.Track) Album {
	album := Album{
		ID:          p.ID,
		Title:       p.Title,
		Genre:       p.Genre,
		ReleaseDate: p.ReleaseDate,
		Tracks:      tracks,
	}
	if p.Images != nil {
		album.Images = p.Images.toDomain()
	}

	return album
}
