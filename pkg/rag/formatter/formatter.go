package formatter

import (
	"strings"

	"food-rag-be/pkg/store"
)

const (
	// NoMatches is the context block used when retrieval produced nothing.
	NoMatches = "No matching dishes found in the database."
	// UnnamedItem stands in for items without a name in their metadata.
	UnnamedItem = "Unnamed dish"
)

// Format renders one "<name>: <content>" line per item, in input order.
// Line breaks inside content are folded to spaces so the line count always
// equals the item count.
func Format(items []store.FoodItem) string {
	if len(items) == 0 {
		return NoMatches
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		name := item.Name()
		if name == "" {
			name = UnnamedItem
		}
		lines = append(lines, name+": "+singleLine(item.Content))
	}
	return strings.Join(lines, "\n")
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// singleLine replaces line breaks only; other whitespace is kept as retrieved.
func singleLine(s string) string {
	return lineBreaks.Replace(s)
}
