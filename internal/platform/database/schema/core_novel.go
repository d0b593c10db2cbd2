package schema

// CoreNovelTable represents the 'core.novel' table
type CoreNovelTable struct {
	Table        string
	ID           string
	Title        string
	Slug         string
	Description  string
	Status       string
	AuthorID     string
	IsVisible    string
	PublishedAt  string
	ChapterCount string
	CreatedAt    string
	UpdatedAt    string
	RetiredAt    string
}

// CoreNovel is the schema definition for core.novel
var CoreNovel = CoreNovelTable{
	Table:        "core.novel",
	ID:           "id",
	Title:        "title",
	Slug:         "slug",
	Description:  "description",
	Status:       "status",
	AuthorID:     "authorid",
	IsVisible:    "isvisible",
	PublishedAt:  "publishedat",
	ChapterCount: "chaptercount",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	RetiredAt:    "retiredat",
}

func (t CoreNovelTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Slug, t.Description, t.Status, t.AuthorID,
		t.IsVisible, t.PublishedAt, t.ChapterCount, t.CreatedAt, t.UpdatedAt, t.RetiredAt,
	}
}
