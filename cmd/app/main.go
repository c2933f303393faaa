package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/notebook/internal"
	"github.com/starford/notebook/internal/notes"
	pkgconfig "github.com/starford/notebook/pkg/config"
)

var version = "dev"

// loadConfig reads the --config file over the defaults. A missing file is
// not an error; the returned path is empty in that case so nothing watches it.
func loadConfig(cmd *cli.Command) (*internal.Config, string, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		configPath = ""
	}
	return cfg, configPath, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx,
		internal.WithConfig(cfg),
		internal.WithConfigPath(configPath),
		internal.WithVersion(version),
		internal.WithLogOutput(os.Stderr),
	)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	if cmd.Args().Len() != 1 || cmd.Args().First() == "" {
		return "", cli.Exit(fmt.Sprintf("usage: %s %s", cmd.Name, name), 2)
	}
	return cmd.Args().First(), nil
}

func isNote(_ context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "PATH")
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ok, err := notes.NewResolver(cfg).IsNote(path)
	if err != nil {
		return err
	}
	if !ok {
		if !cmd.Bool("quiet") {
			fmt.Println("false")
		}
		return cli.Exit("", 1)
	}
	if !cmd.Bool("quiet") {
		fmt.Println("true")
	}
	return nil
}

func notePath(_ context.Context, cmd *cli.Command) error {
	title, err := requireArg(cmd, "TITLE")
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p, ok := notes.NewResolver(cfg).NotePathForTitle(title)
	if !ok {
		return cli.Exit("title is empty", 2)
	}
	fmt.Println(p)
	return nil
}

// withNotebook opens the notebook, syncs the document store and hands it to fn.
func withNotebook(cmd *cli.Command, fn func(nb *internal.Notebook) error) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	nb, err := internal.OpenNotebook(cfg, logger)
	if err != nil {
		return err
	}
	defer nb.Close()
	if _, err := nb.Sync(logger); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return fn(nb)
}

func openNote(ctx context.Context, cmd *cli.Command) error {
	title, err := requireArg(cmd, "TITLE")
	if err != nil {
		return err
	}
	return withNotebook(cmd, func(nb *internal.Notebook) error {
		res, err := nb.Service.OpenNote(ctx, title)
		if err != nil {
			return err
		}
		fmt.Println(res.Path)
		return nil
	})
}

func search(ctx context.Context, cmd *cli.Command) error {
	query, err := requireArg(cmd, "QUERY")
	if err != nil {
		return err
	}
	return withNotebook(cmd, func(nb *internal.Notebook) error {
		var lines []string
		if cmd.Bool("titles") {
			hits, err := nb.Service.FindTitles(ctx, query, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			for _, h := range hits {
				lines = append(lines, fmt.Sprintf("%s\t%s", h.Path, h.Title))
			}
		} else {
			hits, err := nb.Service.Search(ctx, query, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			for _, h := range hits {
				lines = append(lines, fmt.Sprintf("%s\t%s", h.Path, h.Title))
			}
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return nil
	})
}

func main() {
	cmd := &cli.Command{
		Name:    "notebook",
		Usage:   "Notes directory companion for the editor: note identity, autosave, search",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP bridge, watcher and config reloader",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve notebook tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:      "is-note",
				Usage:     "Exit 0 when PATH is a note, 1 otherwise",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Print nothing"},
				},
				Action: isNote,
			},
			{
				Name:      "path",
				Usage:     "Print the path of the note with TITLE",
				ArgsUsage: "TITLE",
				Action:    notePath,
			},
			{
				Name:      "open",
				Usage:     "Create the note with TITLE if missing and print its path",
				ArgsUsage: "TITLE",
				Action:    openNote,
			},
			{
				Name:      "search",
				Usage:     "Full-text search, or fuzzy title search with --titles",
				ArgsUsage: "QUERY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum results"},
					&cli.BoolFlag{Name: "titles", Aliases: []string{"t"}, Usage: "Match note titles fuzzily"},
				},
				Action: search,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			if msg := exit.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(exit.ExitCode())
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
