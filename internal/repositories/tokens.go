package repositories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// TokenStore persists one raw bearer token per [models.Slot] as <dir>/{slot}_token.txt.
//
// Tokens are stored unencrypted; confidentiality is limited to the file permissions (0600 within a 0700 directory).
type TokenStore struct {
	dir string
}

// NewTokenStore creates a TokenStore rooted at dir. The directory is created on first save.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{dir: dir}
}

// Dir returns the directory holding the token files.
func (s *TokenStore) Dir() string {
	return s.dir
}

// Path returns the token file path for slot.
func (s *TokenStore) Path(slot models.Slot) string {
	return filepath.Join(s.dir, slot.String()+"_token.txt")
}

// Save writes token for slot, replacing any previous value.
func (s *TokenStore) Save(slot models.Slot, token string) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", shared.ErrInvalidSlot, slot)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("%w: create token directory: %v", shared.ErrStorage, err)
	}

	if err := os.WriteFile(s.Path(slot), []byte(token), 0600); err != nil {
		return fmt.Errorf("%w: write %s token: %v", shared.ErrStorage, slot, err)
	}
	return nil
}

// Load returns the stored token for slot with trailing whitespace removed.
//
// A missing file is the empty-token case and returns "" with a nil error.
func (s *TokenStore) Load(slot models.Slot) (string, error) {
	if !slot.Valid() {
		return "", fmt.Errorf("%w: %d", shared.ErrInvalidSlot, slot)
	}

	data, err := os.ReadFile(s.Path(slot))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: read %s token: %v", shared.ErrStorage, slot, err)
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}

// Clear deletes the stored token for slot. Deleting a token that was never saved is a storage error.
func (s *TokenStore) Clear(slot models.Slot) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", shared.ErrInvalidSlot, slot)
	}

	if err := os.Remove(s.Path(slot)); err != nil {
		return fmt.Errorf("%w: remove %s token: %v", shared.ErrStorage, slot, err)
	}
	return nil
}
