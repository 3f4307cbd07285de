package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var categories = []string{"shoes", "shirts", "accessories"}

func TestParse_PriceBounds(t *testing.T) {
	p := Parse("show me shoes under $50", categories)
	assert.Equal(t, "shoes", p.Category)
	assert.Equal(t, int64(5000), p.MaxPrice)
	assert.Equal(t, "", p.Query)

	p = Parse("shirts over 19.99", categories)
	assert.Equal(t, "shirts", p.Category)
	assert.Equal(t, int64(1999), p.MinPrice)
}

func TestParse_SortHints(t *testing.T) {
	p := Parse("cheapest running shoes", categories)
	assert.Equal(t, "price_asc", p.Sort)
	assert.Equal(t, "shoes", p.Category)
	assert.Equal(t, "running", p.Query)

	p = Parse("best premium watch", categories)
	assert.Equal(t, "price_desc", p.Sort)
	assert.Equal(t, "watch", p.Query)
}

func TestParse_StockHint(t *testing.T) {
	p := Parse("do you have any red shirts available", categories)
	assert.True(t, p.InStock)
	assert.Equal(t, "shirts", p.Category)
	assert.Equal(t, "red", p.Query)
}

func TestParse_Empty(t *testing.T) {
	p := Parse("   ", categories)
	assert.Equal(t, SearchParams{}, p)
}

func TestParse_ResidualQueryOnly(t *testing.T) {
	p := Parse("I want a blue canvas bag", categories)
	assert.Equal(t, "blue canvas bag", p.Query)
	assert.Equal(t, "", p.Category)
}
