package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// SessionOpts contains the collaborators of a [Session].
type SessionOpts struct {
	Auth    Authorizer
	Library Library
	Store   TokenStore
	Journal Journal // Optional
	Logger  *log.Logger

	// AllowSelfSync permits a transfer when both slots hold the same access token.
	AllowSelfSync bool
}

// SlotState is a point-in-time copy of one slot for display.
type SlotState struct {
	Slot          models.Slot
	Authenticated bool
	Populated     bool
	Items         []models.Item
}

// TransferResult summarises a transfer. A failed transfer still returns one alongside its error.
type TransferResult struct {
	TransferID   string // Empty when no journal is configured or it failed to start
	ItemCount    int
	BatchCount   int
	SavedBatches int
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration is the wall time of the transfer.
func (r TransferResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// account is the guarded state of one account context.
//
// generation increments on every credential change so a fetch started under an older credential
// cannot store its items.
type account struct {
	mu         sync.Mutex
	cred       *models.Credential
	items      []models.Item
	populated  bool
	generation uint64
}

func (a *account) reset(cred *models.Credential) {
	a.cred = cred
	a.items = nil
	a.populated = false
	a.generation++
}

func (a *account) snapshot() (cred *models.Credential, items []models.Item, populated bool, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cred != nil {
		c := *a.cred
		cred = &c
	}
	return cred, append([]models.Item(nil), a.items...), a.populated, a.generation
}

// Session owns the credential and last fetched items of both slots.
//
// Each slot has its own mutex, held only while reading or replacing its state and never across network calls.
// At most one transfer runs at a time.
type Session struct {
	auth    Authorizer
	library Library
	store   TokenStore
	journal Journal
	logger  *log.Logger

	allowSelfSync bool

	slots      [2]*account
	transferMu sync.Mutex
}

// NewSession creates a Session with both slots unauthenticated.
func NewSession(opts SessionOpts) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		auth:          opts.Auth,
		library:       opts.Library,
		store:         opts.Store,
		journal:       opts.Journal,
		logger:        logger,
		allowSelfSync: opts.AllowSelfSync,
		slots:         [2]*account{{}, {}},
	}
}

func (s *Session) account(sl models.Slot) (*account, error) {
	if !sl.Valid() {
		return nil, fmt.Errorf("%w: %d", shared.ErrInvalidSlot, sl)
	}
	return s.slots[sl], nil
}

// AuthorizeURL returns the authorize URL for sl with the slot name as state.
func (s *Session) AuthorizeURL(sl models.Slot) (string, error) {
	if _, err := s.account(sl); err != nil {
		return "", err
	}
	return s.auth.AuthorizeURL(sl)
}

// ExchangeCode exchanges code, persists the access token and caches the credential for sl.
//
// Previously fetched items of sl are discarded since they may belong to another account.
// On any failure the slot is left unchanged.
func (s *Session) ExchangeCode(ctx context.Context, sl models.Slot, code string) error {
	st, err := s.account(sl)
	if err != nil {
		return err
	}

	cred, err := s.auth.Exchange(ctx, code)
	if err != nil {
		return err
	}

	if err := s.store.Save(sl, cred.AccessToken); err != nil {
		return err
	}

	st.mu.Lock()
	st.reset(&cred)
	st.mu.Unlock()

	s.logger.Info("slot authenticated", "slot", sl, "refresh_token", cred.HasRefreshToken())
	return nil
}

// FetchLibrary fetches the liked songs of sl and caches them.
//
// The fetch runs without holding the slot lock. Its result is discarded with [shared.ErrPrecondition] if the slot
// was re-authenticated or cleared meanwhile. A failed fetch leaves previously cached items untouched.
func (s *Session) FetchLibrary(ctx context.Context, sl models.Slot, progress chan<- ProgressUpdate) ([]models.Item, error) {
	st, err := s.account(sl)
	if err != nil {
		return nil, err
	}

	cred, _, _, gen := st.snapshot()
	if cred == nil {
		return nil, fmt.Errorf("%w: %s slot is not authenticated", shared.ErrPrecondition, sl)
	}

	items, err := s.library.Fetch(ctx, *cred, func(page, fetched, total int) {
		sendProgress(progress, fetchPageUpdate(sl, page, fetched, total))
	})
	if err != nil {
		s.logger.Error("fetch failed", "slot", sl, "error", err)
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.generation != gen {
		return nil, fmt.Errorf("%w: %s slot changed during fetch", shared.ErrPrecondition, sl)
	}
	st.items = items
	st.populated = true

	s.logger.Info("library fetched", "slot", sl, "items", len(items))
	return append([]models.Item(nil), items...), nil
}

// Transfer saves the cached items of the from slot into the library of the to slot.
//
// It requires a populated from slot and an authenticated to slot, and makes no requests otherwise.
// Batches saved before a failure are not rolled back; the journal records the last one that succeeded
// and the partial result is returned with the error.
func (s *Session) Transfer(ctx context.Context, progress chan<- ProgressUpdate) (*TransferResult, error) {
	if !s.transferMu.TryLock() {
		return nil, fmt.Errorf("%w: transfer already running", shared.ErrPrecondition)
	}
	defer s.transferMu.Unlock()

	fromCred, items, populated, _ := s.slots[models.From].snapshot()
	toCred, _, _, _ := s.slots[models.To].snapshot()

	switch {
	case fromCred == nil:
		return nil, fmt.Errorf("%w: from slot is not authenticated", shared.ErrPrecondition)
	case !populated:
		return nil, fmt.Errorf("%w: from library has not been fetched", shared.ErrPrecondition)
	case toCred == nil:
		return nil, fmt.Errorf("%w: to slot is not authenticated", shared.ErrPrecondition)
	case fromCred.AccessToken == toCred.AccessToken && !s.allowSelfSync:
		return nil, fmt.Errorf("%w: from and to use the same account token", shared.ErrPrecondition)
	}

	result := &TransferResult{
		ItemCount:  len(items),
		BatchCount: len(services.Chunk(models.ItemIDs(items), services.BatchSize)),
		StartedAt:  time.Now(),
	}

	journal := s.journal
	if journal != nil {
		record, err := journal.Begin(result.ItemCount, result.BatchCount)
		if err != nil {
			s.logger.Warn("transfer journal unavailable", "error", err)
			journal = nil
		} else {
			result.TransferID = record.ID
		}
	}

	logger := shared.WithLogger(s.logger, "transfer", result.TransferID)
	logger.Info("transfer started", "items", result.ItemCount, "batches", result.BatchCount)
	sendProgress(progress, transferStartUpdate(result.ItemCount, result.BatchCount))

	err := s.library.Write(ctx, *toCred, items, func(b services.BatchResult) {
		if b.Err == nil {
			result.SavedBatches++
		}
		if journal != nil {
			if jerr := journal.RecordBatch(batchRecord(result.TransferID, b)); jerr != nil {
				logger.Warn("failed to record batch", "batch", b.Index, "error", jerr)
			}
		}
		sendProgress(progress, writeBatchUpdate(b.Index+1, b.Total, len(b.IDs), b.Err))
	})

	if journal != nil {
		if jerr := journal.Finish(result.TransferID, err); jerr != nil {
			logger.Warn("failed to finish transfer record", "error", jerr)
		}
	}

	result.FinishedAt = time.Now()
	if err != nil {
		logger.Error("transfer failed", "saved_batches", result.SavedBatches, "error", err)
		if result.TransferID != "" {
			return result, fmt.Errorf("transfer %s stopped after %d of %d batches: %w",
				result.TransferID, result.SavedBatches, result.BatchCount, err)
		}
		return result, fmt.Errorf("transfer stopped after %d of %d batches: %w", result.SavedBatches, result.BatchCount, err)
	}

	logger.Info("transfer completed", "items", result.ItemCount, "duration", result.Duration())
	sendProgress(progress, transferDoneUpdate(result))
	return result, nil
}

func batchRecord(transferID string, b services.BatchResult) models.TransferBatch {
	record := models.TransferBatch{
		TransferID: transferID,
		Index:      b.Index,
		Size:       len(b.IDs),
		Status:     models.TransferCompleted,
	}
	if b.Err != nil {
		record.Status = models.TransferFailed
		record.Error = b.Err.Error()
	}
	return record
}

// LoadSavedSlots reports which slots have a stored token.
func (s *Session) LoadSavedSlots() (map[models.Slot]bool, error) {
	saved := make(map[models.Slot]bool, len(models.Slots))
	for _, sl := range models.Slots {
		token, err := s.store.Load(sl)
		if err != nil {
			return nil, err
		}
		saved[sl] = token != ""
	}
	return saved, nil
}

// Restore authenticates every slot that has a stored token, which lets a new process reuse an earlier login.
//
// A slot already holding the stored token keeps its items. Stored tokens carry no refresh token.
func (s *Session) Restore() (map[models.Slot]bool, error) {
	restored := make(map[models.Slot]bool, len(models.Slots))
	for _, sl := range models.Slots {
		token, err := s.store.Load(sl)
		if err != nil {
			return nil, err
		}
		if token == "" {
			restored[sl] = false
			continue
		}

		st := s.slots[sl]
		st.mu.Lock()
		if st.cred == nil || st.cred.AccessToken != token {
			st.reset(&models.Credential{AccessToken: token})
		}
		st.mu.Unlock()
		restored[sl] = true
	}
	return restored, nil
}

// Clear forgets sl in memory and deletes its stored token.
//
// The in-memory state is reset even when deleting the token file fails.
func (s *Session) Clear(sl models.Slot) error {
	st, err := s.account(sl)
	if err != nil {
		return err
	}

	st.mu.Lock()
	st.reset(nil)
	st.mu.Unlock()

	if err := s.store.Clear(sl); err != nil {
		return err
	}
	s.logger.Info("slot cleared", "slot", sl)
	return nil
}

// Snapshot returns a copy of the state of sl. An invalid slot yields the zero state.
func (s *Session) Snapshot(sl models.Slot) SlotState {
	st, err := s.account(sl)
	if err != nil {
		return SlotState{Slot: sl}
	}

	cred, items, populated, _ := st.snapshot()
	return SlotState{Slot: sl, Authenticated: cred != nil, Populated: populated, Items: items}
}

// IsPrecondition reports whether err is a session state error rather than an upstream failure.
func IsPrecondition(err error) bool {
	return errors.Is(err, shared.ErrPrecondition)
}
