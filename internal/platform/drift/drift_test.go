// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package drift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/novika/internal/platform/drift"
)

/*
TestGuard_Live verifies predicate construction for migrated and lagging tables.
*/
func TestGuard_Live(t *testing.T) {
	guard := drift.New(map[string]bool{
		"core.author": true,
		"core.novel":  false,
	}, nil)

	tests := []struct {
		name  string
		table string
		alias string
		want  string
	}{
		{"migrated_no_alias", "core.author", "", "retiredat IS NULL"},
		{"migrated_with_alias", "core.author", "a", "a.retiredat IS NULL"},
		{"lagging_table", "core.novel", "n", "TRUE"},
		{"unknown_table_assumed_migrated", "core.chapter", "c", "c.retiredat IS NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guard.LiveAlias(tt.table, tt.alias))
		})
	}
}

/*
TestGuard_HasRetirement verifies the capability lookups.
*/
func TestGuard_HasRetirement(t *testing.T) {
	guard := drift.New(map[string]bool{
		"core.genre": false,
	}, nil)

	assert.False(t, guard.HasRetirement("core.genre"))
	assert.True(t, guard.HasRetirement("core.author"))
	assert.Equal(t, "TRUE", guard.Live("core.genre"))
	assert.Equal(t, "retiredat IS NULL", guard.Live("core.author"))
}
