package chapter

import "time"

// Chapter is a single installment of a novel.
//
// Two integrity rules hold among the live chapters of one novel: numbers are
// unique, and normalized body content is unique (tracked by Fingerprint).
// Retired chapters release both, so a replacement upload can reuse the number
// of a chapter that was pulled.
type Chapter struct {
	ID      string `json:"id"`
	NovelID string `json:"novel_id"`

	// Number is the reading-order position. Zero on input means
	// "allocate the next free number".
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body,omitempty"`

	// Fingerprint is the content hash of the normalized body. It is
	// assigned on create and never exposed to clients.
	Fingerprint string `json:"-"`

	IsVisible   bool       `json:"is_visible"`
	PublishedAt *time.Time `json:"published_at"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	RetiredAt *time.Time `json:"-"`
}

func (c *Chapter) Live() bool {
	return c.RetiredAt == nil
}

const (
	FieldNovelID = "novel_id"
	FieldNumber  = "number"
	FieldTitle   = "title"
	FieldBody    = "body"
)
