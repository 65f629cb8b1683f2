package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSlotsRestored MsgKind = iota
	MsgLibraryFetched
	MsgProgressUpdate
	MsgTransferComplete
)

type restoredData struct {
	restored map[models.Slot]bool
	err      error
}

type fetchedData struct {
	slot  models.Slot
	items []models.Item
	err   error
}

type transferData struct {
	result *tasks.TransferResult
	err    error
}

// slotsRestoredMsg is the constructor for [MsgSlotsRestored]
func slotsRestoredMsg(restored map[models.Slot]bool, err error) Msg {
	return Msg{kind: MsgSlotsRestored, data: restoredData{restored, err}}
}

// libraryFetchedMsg is the constructor for [MsgLibraryFetched]
func libraryFetchedMsg(slot models.Slot, items []models.Item, err error) Msg {
	return Msg{kind: MsgLibraryFetched, data: fetchedData{slot, items, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// transferCompleteMsg is the constructor for [MsgTransferComplete]
func transferCompleteMsg(result *tasks.TransferResult, err error) Msg {
	return Msg{kind: MsgTransferComplete, data: transferData{result, err}}
}
