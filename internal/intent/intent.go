// Package intent turns a free-text shopping question into structured product
// search parameters with a small keyword heuristic. It is presentation-layer
// glue: the engine itself never depends on it.
package intent

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// SearchParams is the structured query extracted from a question, consumable
// by the product listing endpoint.
type SearchParams struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	MinPrice int64  `json:"min_price"` // minor units, 0 = unset
	MaxPrice int64  `json:"max_price"` // minor units, 0 = unset
	Sort     string `json:"sort"`      // price_asc, price_desc or empty
	InStock  bool   `json:"in_stock"`
}

var (
	maxPriceRe = regexp.MustCompile(`(?i)(?:under|below|less than|cheaper than|at most|<=?)\s*\$?(\d+(?:\.\d{1,2})?)`)
	minPriceRe = regexp.MustCompile(`(?i)(?:over|above|more than|at least|>=?)\s*\$?(\d+(?:\.\d{1,2})?)`)
	numberRe   = regexp.MustCompile(`\$?\d+(?:\.\d{1,2})?`)
)

var cheapWords = map[string]bool{
	"cheap": true, "cheapest": true, "budget": true, "affordable": true,
}

var expensiveWords = map[string]bool{
	"premium": true, "expensive": true, "best": true, "top": true,
}

var stockWords = map[string]bool{
	"available": true, "stock": true, "in-stock": true,
}

// noise words dropped from the residual free-text query
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "i": true, "want": true, "need": true,
	"show": true, "me": true, "find": true, "looking": true, "for": true,
	"some": true, "any": true, "buy": true, "get": true, "do": true, "you": true,
	"have": true, "with": true, "in": true, "is": true, "are": true, "there": true,
	"what": true, "which": true, "please": true, "can": true, "something": true,
	"under": true, "below": true, "over": true, "above": true, "than": true,
	"less": true, "more": true, "most": true, "least": true, "at": true,
}

// toMinorUnits converts a dollar figure like "12.50" to cents.
func toMinorUnits(s string) int64 {
	return int64(cast.ToFloat64(strings.TrimPrefix(s, "$")) * 100)
}

// Parse extracts search parameters from a free-text question. categories is
// the set of known catalog categories used for exact category matching.
func Parse(question string, categories []string) SearchParams {
	params := SearchParams{}
	text := strings.TrimSpace(question)
	if text == "" {
		return params
	}

	if m := maxPriceRe.FindStringSubmatch(text); m != nil {
		params.MaxPrice = toMinorUnits(m[1])
		text = strings.Replace(text, m[0], " ", 1)
	}
	if m := minPriceRe.FindStringSubmatch(text); m != nil {
		params.MinPrice = toMinorUnits(m[1])
		text = strings.Replace(text, m[0], " ", 1)
	}
	// Leftover bare numbers carry no reliable meaning, drop them.
	text = numberRe.ReplaceAllString(text, " ")

	known := make(map[string]string, len(categories))
	for _, c := range categories {
		known[strings.ToLower(c)] = c
		// naive singular/plural bridging
		known[strings.ToLower(c)+"s"] = c
		known[strings.TrimSuffix(strings.ToLower(c), "s")] = c
	}

	var queryWords []string
	for _, raw := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(raw, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		switch {
		case cheapWords[word]:
			params.Sort = "price_asc"
		case expensiveWords[word]:
			params.Sort = "price_desc"
		case stockWords[word]:
			params.InStock = true
		case known[word] != "" && params.Category == "":
			params.Category = known[word]
		case stopWords[word]:
			// skip
		default:
			queryWords = append(queryWords, word)
		}
	}
	params.Query = strings.Join(queryWords, " ")
	return params
}
