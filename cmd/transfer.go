package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// TransferRun fetches the from library and saves every item into the to library.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	r.allowSelfSync = cmd.Bool("allow-self-sync")

	session, err := r.Session()
	if err != nil {
		return err
	}

	for _, slot := range models.Slots {
		if !session.Snapshot(slot).Authenticated {
			return fmt.Errorf("%w: %s slot is not logged in (run 'likesync auth login --slot %s')", shared.ErrPrecondition, slot, slot)
		}
	}

	r.logger.Info("starting transfer")
	r.writePlain("Starting liked songs transfer...\n\n")

	progress, wait := r.progressPrinter()
	items, err := session.FetchLibrary(ctx, models.From, progress)
	wait()
	if err != nil {
		return err
	}
	r.writePlain("📥 Fetched %d liked songs from the from slot\n\n", len(items))

	progress, wait = r.progressPrinter()
	result, err := session.Transfer(ctx, progress)
	wait()
	if err != nil {
		if result != nil && result.TransferID != "" {
			r.writePlain("\n⚠ %d of %d batches saved. Run 'likesync transfer show %s' for details.\n",
				result.SavedBatches, result.BatchCount, result.TransferID)
		}
		return err
	}

	r.writePlain("\n")
	r.writePlainHeader("Transfer Complete!")
	r.writePlain("Liked songs saved: %d\n", result.ItemCount)
	r.writePlain("Batches: %d\n", result.BatchCount)
	r.writePlain("Duration: %s\n", result.Duration().Round(time.Millisecond))
	if result.TransferID != "" {
		r.writePlain("Journal: %s\n", result.TransferID)
	}
	return nil
}

// TransferHistory lists journaled transfers, newest first.
func (r *Runner) TransferHistory(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.Session(); err != nil {
		return err
	}
	if r.journal == nil {
		return fmt.Errorf("%w: transfer journal unavailable at %s", shared.ErrServiceUnavailable, r.config.DatabasePath())
	}

	transfers, err := r.journal.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(transfers, cmd.Bool("pretty"))
	}

	if len(transfers) == 0 {
		return r.writePlain("No transfers recorded\n")
	}

	r.writePlain("Found %d transfers:\n\n", len(transfers))
	for _, t := range transfers {
		r.writePlain("%s  %s\n", t.ID, t.Status)
		r.writePlain("   Started: %s\n", t.StartedAt.Local().Format(time.DateTime))
		r.writePlain("   Songs: %d in %d batches (last saved batch: %d)\n", t.ItemCount, t.BatchCount, t.LastBatch+1)
		if t.Error != "" {
			r.writePlain("   Error: %s\n", t.Error)
		}
		r.writePlain("\n")
	}
	return nil
}

// TransferShow prints one journaled transfer with its batches.
func (r *Runner) TransferShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: transfer id is required", shared.ErrMissingArgument)
	}

	if _, err := r.Session(); err != nil {
		return err
	}
	if r.journal == nil {
		return fmt.Errorf("%w: transfer journal unavailable at %s", shared.ErrServiceUnavailable, r.config.DatabasePath())
	}

	transfer, err := r.journal.Get(id)
	if err != nil {
		return err
	}
	batches, err := r.journal.Batches(id)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Transfer %s", transfer.ID))
	r.writePlain("Status: %s\n", transfer.Status)
	r.writePlain("Songs: %d in %d batches\n", transfer.ItemCount, transfer.BatchCount)
	if transfer.FinishedAt != nil {
		r.writePlain("Duration: %s\n", transfer.FinishedAt.Sub(transfer.StartedAt).Round(time.Millisecond))
	}
	if transfer.Error != "" {
		r.writePlain("Error: %s\n", transfer.Error)
	}

	r.writePlain("\n")
	for _, b := range batches {
		mark := "✓"
		if b.Status == models.TransferFailed {
			mark = "✗"
		}
		r.writePlain("[%d/%d] %s %d songs", b.Index+1, transfer.BatchCount, mark, b.Size)
		if b.Error != "" {
			r.writePlain(": %s", b.Error)
		}
		r.writePlain("\n")
	}
	return nil
}
