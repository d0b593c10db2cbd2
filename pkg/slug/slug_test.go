// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novika/pkg/slug"
)

/*
TestFrom verifies the slug transformation pipeline against representative inputs.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Jane Doe", "jane-doe"},
		{"accents", "Café Récit", "cafe-recit"},
		{"punctuation", "The Winter Garden: Part II", "the-winter-garden-part-ii"},
		{"leading_trailing", "  --Hello--  ", "hello"},
		{"multiple_separators", "a   b___c", "a-b-c"},
		{"digits", "Volume 2", "volume-2"},
		{"empty", "", ""},
		{"only_symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Idempotent checks that re-slugging a slug is a no-op.
*/
func TestFrom_Idempotent(t *testing.T) {
	inputs := []string{
		"Jane Doe",
		"Dawn — A Récit",
		"already-a-slug",
		"  MIXED Case 42  ",
		"日本語タイトル ascii tail",
	}

	for _, input := range inputs {
		once := slug.From(input)
		assert.Equal(t, once, slug.From(once), "slug.From must be idempotent for %q", input)
	}
}
