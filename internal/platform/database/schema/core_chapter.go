package schema

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table       string
	ID          string
	NovelID     string
	Number      string
	Title       string
	Body        string
	Fingerprint string
	IsVisible   string
	PublishedAt string
	CreatedAt   string
	UpdatedAt   string
	RetiredAt   string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:       "core.chapter",
	ID:          "id",
	NovelID:     "novelid",
	Number:      "number",
	Title:       "title",
	Body:        "body",
	Fingerprint: "fingerprint",
	IsVisible:   "isvisible",
	PublishedAt: "publishedat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
	RetiredAt:   "retiredat",
}

func (t CoreChapterTable) Columns() []string {
	return []string{
		t.ID, t.NovelID, t.Number, t.Title, t.Body, t.Fingerprint,
		t.IsVisible, t.PublishedAt, t.CreatedAt, t.UpdatedAt, t.RetiredAt,
	}
}
