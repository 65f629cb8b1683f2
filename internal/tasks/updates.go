package tasks

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase       // Operation phase
	Slot    models.Slot // Slot the operation runs against
	Step    int         // Current step number within phase
	Total   int         // Total steps in this phase
	Message string      // Human-readable message for display
	Data    any         // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLibrary Phase = iota
	WriteLibrary
	TransferDone
)

func (p Phase) String() string {
	switch p {
	case FetchLibrary:
		return "fetch_library"
	case WriteLibrary:
		return "write_library"
	case TransferDone:
		return "transfer_done"
	default:
		return ""
	}
}

func fetchPageUpdate(slot models.Slot, page, fetched, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchLibrary,
		Slot:    slot,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("[%s] page %d: %d/%d liked songs", slot, page, fetched, total),
	}
}

func transferStartUpdate(items, batches int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteLibrary,
		Slot:    models.To,
		Step:    0,
		Total:   batches,
		Message: fmt.Sprintf("Saving %d liked songs in %d batches...", items, batches),
	}
}

func writeBatchUpdate(step, total, size int, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   WriteLibrary,
			Slot:    models.To,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %v", step, total, err),
		}
	}
	return ProgressUpdate{
		Phase:   WriteLibrary,
		Slot:    models.To,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ saved %d songs", step, total, size),
	}
}

func transferDoneUpdate(result *TransferResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TransferDone,
		Slot:    models.To,
		Step:    result.BatchCount,
		Total:   result.BatchCount,
		Message: fmt.Sprintf("Transferred %d liked songs", result.ItemCount),
		Data:    result,
	}
}
