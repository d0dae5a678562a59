package models

// Movie is a catalog record from the external metadata provider. It is
// read-only from this system's point of view.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"release_date"`
	PosterPath  string   `json:"poster_path,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Popularity  float64  `json:"popularity,omitempty"`
}

// PrimaryGenre returns the first listed genre, or "" when none is known.
func (m *Movie) PrimaryGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return m.Genres[0]
}
