package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func uploadCommand() *cli.Command {
	var (
		cfg  config
		file string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Path to the case text file",
			Destination: &file,
			Required:    true,
		},
	}
	flags = append(flags, ownerFlag(&cfg))
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "upload",
		Usage: "Upload a case document and build its summary",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := cfg.newRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			f, err := os.Open(file)
			if err != nil {
				return goerr.Wrap(err, "failed to open case file", goerr.V("file", file))
			}
			defer f.Close()

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
				spinner.WithWriter(os.Stderr), spinner.WithSuffix(" summarizing case..."))
			sp.Start()
			result, err := rt.ingest.Upload(ctx, cfg.ownerID(), filepath.Base(file), f)
			sp.Stop()
			if err != nil {
				return goerr.Wrap(err, "failed to upload case")
			}

			w := c.Root().Writer
			if result.Reused {
				fmt.Fprintf(w, "Case already uploaded: %s\n", result.Case.ID)
			} else {
				fmt.Fprintf(w, "Case uploaded: %s\n", result.Case.ID)
			}

			for _, section := range result.Summary.Sections() {
				fmt.Fprintf(w, "\n## %s\n%s\n", section.Name.Label(), section.Text)
			}
			if !result.Summary.IsDecided() {
				fmt.Fprintf(w, "\nNo final orders detected; treated as an undecided matter.\n")
			}
			return nil
		},
	}
}
