package content

// MediaType distinguishes movies from TV series.
type MediaType string

// Media type constants.
const (
	Movie MediaType = "movie"
	TV    MediaType = "tv"
)

// IsValid checks if the media type is one of the supported values.
func (m MediaType) IsValid() bool {
	return m == Movie || m == TV
}

// Key identifies a content item. Identifiers are only unique within a media
// type, so the pair is the identity used across rankings and caches.
type Key struct {
	ID        string
	MediaType MediaType
}

// Less orders keys by id ascending, media type as secondary. Used for
// deterministic tie-breaking in fused output.
func (k Key) Less(other Key) bool {
	if k.ID != other.ID {
		return k.ID < other.ID
	}
	return k.MediaType < other.MediaType
}

// String renders the key as "mediaType:id".
func (k Key) String() string {
	return string(k.MediaType) + ":" + k.ID
}

// Content is a hydrated catalog record.
type Content struct {
	key        Key
	title      string
	genres     []string
	year       int
	popularity float64
	overview   string
}

// New creates a catalog record.
func New(key Key, title string, genres []string, year int, popularity float64, overview string) Content {
	return Content{
		key:        key,
		title:      title,
		genres:     genres,
		year:       year,
		popularity: popularity,
		overview:   overview,
	}
}

// Key returns the content identity.
func (c *Content) Key() Key { return c.key }

// Title returns the display title.
func (c *Content) Title() string { return c.title }

// Genres returns the genre labels.
func (c *Content) Genres() []string { return c.genres }

// Year returns the release year.
func (c *Content) Year() int { return c.year }

// Popularity returns the catalog popularity signal.
func (c *Content) Popularity() float64 { return c.popularity }

// Overview returns the synopsis text.
func (c *Content) Overview() string { return c.overview }

// IsZero reports whether the record is empty.
func (c *Content) IsZero() bool { return c.key == Key{} }
