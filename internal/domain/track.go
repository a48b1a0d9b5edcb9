package domain

const placeholderCoverURL = "https://placehold.co/400x400/1DB954/FFFFFF/png?text=Track"

type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AlbumRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ImageSet holds the renditions the backend may supply. Any of them may be
// empty.
type ImageSet struct {
	Thumbnail string `json:"thumbnail,omitempty"`
	Small     string `json:"small,omitempty"`
	Medium    string `json:"medium,omitempty"`
	Large     string `json:"large,omitempty"`
}

// Track is an immutable description of a playable track. The player only
// references tracks, it never mutates them.
type Track struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     ArtistRef `json:"artist"`
	Album      *AlbumRef `json:"album,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	Popularity int       `json:"popularity"`
	Duration   float64   `json:"duration"`
	AudioURL   string    `json:"audio_url"`
	Images     ImageSet  `json:"images"`
}

// HasAudio reports whether the track carries a usable audio locator.
func (t Track) HasAudio() bool {
	return t.AudioURL != ""
}

// CoverURL picks the best available cover rendition, falling back to a
// placeholder when the backend supplied none.
func (t Track) CoverURL() string {
	switch {
	case t.Images.Medium != "":
		return t.Images.Medium
	case t.Images.Small != "":
		return t.Images.Small
	case t.Images.Thumbnail != "":
		return t.Images.Thumbnail
	default:
		return placeholderCoverURL
	}
}
