// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func slotFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "slot",
		Aliases:  []string{"s"},
		Usage:    "Account slot: from or to",
		Required: true,
	}
}

// setupCommand handles setup operations for configuration and the journal database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration to --config",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the transfer journal and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles per-slot authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the from and to logins",
		Commands: []*cli.Command{
			{
				Name:   "url",
				Usage:  "Print the authorize URL for a slot",
				Flags:  []cli.Flag{slotFlag()},
				Action: r.AuthURL,
			},
			{
				Name:   "login",
				Usage:  "Authorize a slot in the browser via the local callback server",
				Flags:  []cli.Flag{slotFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:  "exchange",
				Usage: "Exchange an authorization code for a slot",
				Flags: []cli.Flag{
					slotFlag(),
					&cli.StringFlag{
						Name:     "code",
						Usage:    "Authorization code from the redirect",
						Required: true,
					},
				},
				Action: r.AuthExchange,
			},
			{
				Name:  "status",
				Usage: "Show which slots have a stored login",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored login of a slot",
				Flags:  []cli.Flag{slotFlag()},
				Action: r.AuthLogout,
			},
		},
	}
}

// libraryCommand handles liked-songs library operations
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Liked songs operations",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Fetch the liked songs of a slot",
				Flags: []cli.Flag{
					slotFlag(),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Export to this file",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Only keep songs fuzzily matching artist, title or album",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: json, csv, markdown or txt",
					},
				},
				Action: r.LibraryFetch,
			},
		},
	}
}

// transferCommand handles copying the from library into the to library
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Copy liked songs from the from slot into the to slot",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Fetch the from library and save it into the to library",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "allow-self-sync",
						Usage: "Allow from and to to be the same account",
					},
				},
				Action: r.TransferRun,
			},
			{
				Name:  "history",
				Usage: "List journaled transfers, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of transfers to show",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.TransferHistory,
			},
			{
				Name:  "show",
				Usage: "Show the batches of one journaled transfer",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TransferShow,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the two-panel interactive TUI",
		Action:  r.TUI,
	}
}
