package models

import (
	"fmt"
	"strings"
	"time"
)

// Slot identifies one of the two independent account contexts.
type Slot int

const (
	From Slot = iota
	To
)

// Slots lists every slot in display order.
var Slots = []Slot{From, To}

var ErrUnknownSlot = fmt.Errorf("unknown slot")

func (s Slot) String() string {
	switch s {
	case From:
		return "from"
	case To:
		return "to"
	default:
		return ""
	}
}

// Valid reports whether s is one of the enumerated slots.
func (s Slot) Valid() bool {
	return s == From || s == To
}

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == From {
		return To
	}
	return From
}

// ParseSlot converts "from" or "to" (case-insensitive, surrounding whitespace ignored) into a [Slot].
//
// The OAuth state parameter carries the slot name verbatim, so callers use this to validate it before trusting it.
func ParseSlot(v string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "from":
		return From, nil
	case "to":
		return To, nil
	default:
		return 0, fmt.Errorf("%w: %q (must be 'from' or 'to')", ErrUnknownSlot, v)
	}
}

// Credential is the bearer token pair for one authenticated slot.
//
// RefreshToken is empty when the token endpoint did not return one.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// HasRefreshToken reports whether the exchange supplied a refresh token.
func (c Credential) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// Item is a single liked track.
type Item struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   string   `json:"album"`
	URI     string   `json:"uri"`
}

// ArtistNames joins the contributor names for display.
func (i Item) ArtistNames() string {
	return strings.Join(i.Artists, ", ")
}

// ItemIDs returns the identifiers of items in order.
func ItemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// TransferStatus is the lifecycle state of a journaled transfer.
type TransferStatus string

const (
	TransferRunning   TransferStatus = "running"
	TransferCompleted TransferStatus = "completed"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is the journal record for one copy of the "from" library into the "to" library.
//
// LastBatch is the index of the last batch that was accepted upstream, -1 when none was.
type Transfer struct {
	ID         string
	ItemCount  int
	BatchCount int
	LastBatch  int
	Status     TransferStatus
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// TransferBatch is the journal record for one write request of a transfer.
type TransferBatch struct {
	TransferID string
	Index      int
	Size       int
	Status     TransferStatus
	Error      string
	CreatedAt  time.Time
}
