package schema

// NovelGenreTable represents the 'core.novelgenre' junction table
type NovelGenreTable struct {
	Table   string
	NovelID string
	GenreID string
}

// NovelGenre is the schema definition for core.novelgenre
var NovelGenre = NovelGenreTable{
	Table:   "core.novelgenre",
	NovelID: "novelid",
	GenreID: "genreid",
}
