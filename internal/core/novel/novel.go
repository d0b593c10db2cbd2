package novel

import "time"

// Status is the editorial publication status of a novel. It is orthogonal to
// visibility: a completed novel can be unpublished and a draft can never be
// shown, but the two are tracked separately.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusHiatus    Status = "hiatus"
	StatusDropped   Status = "dropped"
)

// Statuses lists every valid Status value, for validation.
func Statuses() []string {
	return []string{
		string(StatusDraft), string(StatusOngoing), string(StatusCompleted),
		string(StatusHiatus), string(StatusDropped),
	}
}

// Novel is a serialized work of fiction, the root of the chapter hierarchy.
//
// Lifecycle: a novel is created hidden, made visible (published) and hidden
// again any number of times, and finally retired. Retirement is terminal and
// cascades to every live chapter under it.
type Novel struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	Status      Status  `json:"status"`
	AuthorID    *string `json:"author_id"`

	IsVisible   bool       `json:"is_visible"`
	PublishedAt *time.Time `json:"published_at"`

	// ChapterCount tracks live chapters only, maintained by the chapter store.
	ChapterCount int `json:"chapter_count"`

	// Genres is hydrated on reads; GenreIDs is the write-side input that
	// replaces the whole association set when present.
	Genres   []GenreRef `json:"genres"`
	GenreIDs []string   `json:"genre_ids,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RetiredAt *time.Time `json:"-"`
}

func (n *Novel) Live() bool {
	return n.RetiredAt == nil
}

// GenreRef is the compact genre projection embedded in novel responses.
type GenreRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Filter holds the parameters for a paginated novel search.
type Filter struct {
	Query       string // Substring search against the title
	AuthorID    string // Restrict to one author
	GenreID     string // Restrict to novels tagged with one genre
	Status      string // Restrict to one editorial status
	VisibleOnly bool   // Restrict to published novels (public read surface)
}

// UpdateInput carries a partial novel update. Nil fields are left untouched;
// a non-nil GenreIDs replaces the association set wholesale.
type UpdateInput struct {
	Title       *string   `json:"title"`
	Slug        *string   `json:"slug"`
	Description *string   `json:"description"`
	Status      *string   `json:"status"`
	AuthorID    *string   `json:"author_id"`
	GenreIDs    *[]string `json:"genre_ids"`
}

const (
	FieldTitle       = "title"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldAuthorID    = "author_id"
	FieldGenreIDs    = "genre_ids"
)
