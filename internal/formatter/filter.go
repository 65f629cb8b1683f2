package formatter

import (
	"slices"
	"strings"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/sahilm/fuzzy"
)

// itemIndex implements [fuzzy.Source] over "artists title album" search keys.
type itemIndex struct {
	keys []string
}

func (idx itemIndex) String(i int) string { return idx.keys[i] }
func (idx itemIndex) Len() int            { return len(idx.keys) }

func newItemIndex(items []models.Item) itemIndex {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = strings.ToLower(strings.Join([]string{item.ArtistNames(), item.Name, item.Album}, " "))
	}
	return itemIndex{keys: keys}
}

// Filter returns the items fuzzily matching query in library order. A blank query returns items unchanged.
func Filter(items []models.Item, query string) []models.Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matches := fuzzy.FindFrom(query, newItemIndex(items))
	indexes := make([]int, len(matches))
	for i, m := range matches {
		indexes[i] = m.Index
	}
	slices.Sort(indexes)

	filtered := make([]models.Item, len(indexes))
	for i, idx := range indexes {
		filtered[i] = items[idx]
	}
	return filtered
}
