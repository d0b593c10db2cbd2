package author

import "time"

// Author represents the creator of one or more novels in the catalog.
//
// An author is never hard-deleted: retirement stamps RetiredAt and hides the
// record from every live-scoped query. Name and slug are unique among live
// authors only (case-insensitively for the name).
type Author struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	Bio       *string    `json:"bio"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RetiredAt *time.Time `json:"-"` // soft-retirement tracker
}

// Live reports whether the author has not been retired.
func (a *Author) Live() bool {
	return a.RetiredAt == nil
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Substring search against the display name
}

// UpdateInput carries a partial author update. Nil fields are left untouched.
type UpdateInput struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
	Bio  *string `json:"bio"`
}

// Field names for validation
const (
	FieldName = "name"
	FieldSlug = "slug"
	FieldBio  = "bio"
)
