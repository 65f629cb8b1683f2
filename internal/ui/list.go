package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/likesync/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Item] to implement [list.Item].
type songItem struct {
	item models.Item
}

func (i songItem) FilterValue() string { return i.item.Name + " " + i.item.ArtistNames() }
func (i songItem) Title() string       { return i.item.Name }
func (i songItem) Description() string {
	desc := i.item.ArtistNames()
	if i.item.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.item.Album)
	}
	return desc
}

// newSongList builds a list panel for slot holding items.
func newSongList(slot models.Slot, items []models.Item, width, height int) list.Model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = songItem{item: item}
	}

	l := list.New(listItems, list.NewDefaultDelegate(), width, height)
	l.Title = fmt.Sprintf("%s • %d liked songs", slot, len(items))
	l.SetShowHelp(false)
	return l
}
