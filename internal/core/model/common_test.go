package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryInfo(t *testing.T) {
	tests := []struct {
		category Category
		name     string
		title    string
	}{
		{CategoryLoading, "loading", "Loading"},
		{CategoryScripting, "scripting", "Scripting"},
		{CategoryRendering, "rendering", "Rendering"},
		{Category(-1), "unknown", "Unknown"},
		{categoryCount, "unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.category.String())
			assert.Equal(t, tt.title, tt.category.Info().Title)
		})
	}
}

func TestCategoriesOrder(t *testing.T) {
	assert.Equal(t, []Category{CategoryLoading, CategoryScripting, CategoryRendering}, Categories())
	for _, c := range Categories() {
		assert.NotEmpty(t, c.Info().Color, c.String())
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, ok := ParseCategory(c.String())
		assert.True(t, ok)
		assert.Equal(t, c, got)
	}

	_, ok := ParseCategory("Loading")
	assert.False(t, ok, "names are lower case")
	_, ok = ParseCategory("")
	assert.False(t, ok)
}

func TestCategoryMarshalJSON(t *testing.T) {
	data, err := sonic.Marshal(struct {
		C Category `json:"c"`
	}{CategoryScripting})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"scripting"}`, string(data))
}
