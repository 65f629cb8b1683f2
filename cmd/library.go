package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryFetch fetches the liked songs of a slot and prints or exports them.
//
// --query narrows the output. With --output the format defaults to the file extension, then json.
func (r *Runner) LibraryFetch(ctx context.Context, cmd *cli.Command) error {
	slot, err := shared.ParseSlot(cmd.String("slot"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	var format formatter.Format
	if name := exportFormatName(cmd.String("format"), output); name != "" {
		if format, err = formatter.ParseFormat(name); err != nil {
			return err
		}
	}

	session, err := r.Session()
	if err != nil {
		return err
	}

	r.logger.Info("fetching liked songs", "slot", slot)

	progress, wait := r.progressPrinter()
	items, err := session.FetchLibrary(ctx, slot, progress)
	wait()
	if err != nil {
		return err
	}

	if query := cmd.String("query"); query != "" {
		items = formatter.Filter(items, query)
		r.logger.Debug("filtered library", "query", query, "matches", len(items))
	}

	if format != "" {
		path, err := formatter.WriteExport(items, format, output)
		if err != nil {
			return err
		}
		r.logger.Infof("library exported to %v with %v items", path, len(items))
		r.writePlain("✓ Library exported to %s\n", path)
		r.writePlain("  Liked songs: %d\n", len(items))
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	r.writePlainln("Found %d liked songs in %s:", len(items), slot)
	for i, item := range items {
		r.writePlain("%d. %s - %s\n", i+1, item.ArtistNames(), item.Name)
		if item.Album != "" {
			r.writePlain("   Album: %s\n", item.Album)
		}
	}
	return nil
}

// exportFormatName picks the explicit format, else the extension of output, else json when output is set.
func exportFormatName(format, output string) string {
	switch {
	case format != "":
		return format
	case output == "":
		return ""
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		return ext
	}
	return string(formatter.JSON)
}
