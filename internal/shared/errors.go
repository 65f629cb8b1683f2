package shared

import (
	"fmt"

	"github.com/desertthunder/likesync/internal/models"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrConfig = fmt.Errorf("configuration error")

	// Authentication errors
	ErrAuth    = fmt.Errorf("authentication failed")
	ErrTimeout = fmt.Errorf("operation timed out")

	// Token and journal persistence
	ErrStorage = fmt.Errorf("storage error")

	// Upstream errors
	ErrNetwork            = fmt.Errorf("network error")
	ErrAPI                = fmt.Errorf("API request failed")
	ErrWrite              = fmt.Errorf("library write failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Session state errors
	ErrPrecondition = fmt.Errorf("precondition failed")
	ErrInvalidSlot  = fmt.Errorf("%w: %w", ErrPrecondition, models.ErrUnknownSlot)

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ParseSlot wraps [models.ParseSlot] so an unknown slot name classifies as [ErrInvalidSlot].
func ParseSlot(v string) (models.Slot, error) {
	slot, err := models.ParseSlot(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSlot, v)
	}
	return slot, nil
}
