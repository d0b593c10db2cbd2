package genre

import "time"

// Genre is a browsing category novels can be tagged with. Retiring a genre
// hides it from the catalog but deliberately leaves existing novel
// associations in place, so un-retiring by a future migration loses nothing.
type Genre struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	RetiredAt   *time.Time `json:"-"`
}

func (g *Genre) Live() bool {
	return g.RetiredAt == nil
}

type Filter struct {
	Query string
}

// UpdateInput carries a partial genre update. Nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

const (
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
)
