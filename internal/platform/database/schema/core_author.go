package schema

// CoreAuthorTable represents the 'core.author' table
type CoreAuthorTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	Bio       string
	CreatedAt string
	UpdatedAt string
	RetiredAt string
}

// CoreAuthor is the schema definition for core.author
var CoreAuthor = CoreAuthorTable{
	Table:     "core.author",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	Bio:       "bio",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
	RetiredAt: "retiredat",
}

func (t CoreAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Bio, t.CreatedAt, t.UpdatedAt, t.RetiredAt}
}
