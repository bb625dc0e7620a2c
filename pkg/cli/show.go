package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

func showCommand() *cli.Command {
	var (
		cfg    config
		caseID string
		raw    bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "case-id",
			Aliases:     []string{"c"},
			Usage:       "Case ID to show",
			Sources:     cli.EnvVars("LAWAI_CASE_ID"),
			Destination: &caseID,
			Required:    true,
		},
		&cli.BoolFlag{
			Name:        "raw",
			Aliases:     []string{"r"},
			Usage:       "Print the stored judgment text instead of the summary",
			Destination: &raw,
		},
	}
	flags = append(flags, ownerFlag(&cfg))
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show a case's summary, or its stored judgment text",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := cfg.newRuntime(ctx, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			id := model.CaseID(caseID)
			w := c.Root().Writer

			if raw {
				text, err := rt.ingest.CaseText(ctx, cfg.ownerID(), id)
				if err != nil {
					return goerr.Wrap(err, "failed to load case text")
				}
				fmt.Fprintln(w, text)
				return nil
			}

			doc, err := rt.repo.GetCase(ctx, id)
			if err != nil {
				return err
			}
			if doc.Owner != cfg.ownerID() {
				return goerr.Wrap(model.ErrCaseNotFound, "case not found", goerr.V("case_id", id))
			}
			summary, err := rt.repo.GetSummary(ctx, id)
			if err != nil {
				return err
			}

			fmt.Fprintf(w, "%s (%s)\n\n", doc.Filename, doc.ID)
			for _, sec := range summary.Sections() {
				fmt.Fprintf(w, "## %s\n%s\n\n", sec.Name.Label(), sec.Text)
			}
			return nil
		},
	}
}
