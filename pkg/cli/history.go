package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/SophieeeeeChen/lawai/pkg/model"
)

func historyCommand() *cli.Command {
	var (
		cfg    config
		caseID string
		limit  int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "case-id",
			Aliases:     []string{"c"},
			Usage:       "Case ID to list the QA log for",
			Sources:     cli.EnvVars("LAWAI_CASE_ID"),
			Destination: &caseID,
			Required:    true,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"l"},
			Usage:       "Maximum number of records, newest kept (0 for all)",
			Destination: &limit,
		},
	}
	flags = append(flags, ownerFlag(&cfg))
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "history",
		Usage: "List the persisted question log of a case",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			records, err := repo.ListQA(ctx, cfg.ownerID(), model.CaseID(caseID), int(limit))
			if err != nil {
				return goerr.Wrap(err, "failed to list QA records")
			}

			w := c.Root().Writer
			if len(records) == 0 {
				fmt.Fprintf(w, "No questions recorded for case %s\n", caseID)
				return nil
			}

			for _, qa := range records {
				fmt.Fprintf(w, "%s\t[%s]\nQ: %s\nA: %s\n\n",
					qa.CreatedAt.Format("2006-01-02 15:04:05"),
					qa.Topic,
					qa.Question,
					qa.Answer,
				)
			}
			return nil
		},
	}
}
