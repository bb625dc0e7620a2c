package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func corpusCommand() *cli.Command {
	return &cli.Command{
		Name:  "corpus",
		Usage: "Manage the shared retrieval corpus",
		Commands: []*cli.Command{
			corpusPrecedentsCommand(),
			corpusStatutesCommand(),
		},
	}
}

func corpusPrecedentsCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "precedents",
		Usage:     "Import precedent judgments into the corpus",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			files := c.Args().Slice()
			if len(files) == 0 {
				return goerr.New("at least one precedent file is required")
			}

			rt, err := cfg.newRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			for _, file := range files {
				raw, err := os.ReadFile(file)
				if err != nil {
					return goerr.Wrap(err, "failed to read precedent file", goerr.V("file", file))
				}

				name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				if err := rt.ingest.ImportPrecedent(ctx, name, string(raw)); err != nil {
					return goerr.Wrap(err, "failed to import precedent", goerr.V("file", file))
				}
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d precedent(s)\n", len(files))
			return nil
		},
	}
}

func corpusStatutesCommand() *cli.Command {
	var (
		cfg  config
		file string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Path to the statute catalog YAML",
			Destination: &file,
			Required:    true,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "statutes",
		Usage: "Import statute extracts into the corpus",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := cfg.newRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			f, err := os.Open(file)
			if err != nil {
				return goerr.Wrap(err, "failed to open statute catalog", goerr.V("file", file))
			}
			defer f.Close()

			n, err := rt.ingest.ImportStatutes(ctx, f)
			if err != nil {
				return goerr.Wrap(err, "failed to import statutes")
			}

			fmt.Fprintf(c.Root().Writer, "Imported %d statute extract(s)\n", n)
			return nil
		},
	}
}
