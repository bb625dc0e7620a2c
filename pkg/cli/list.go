package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func listCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "list",
		Usage: "List uploaded cases",
		Flags: append([]cli.Flag{ownerFlag(&cfg)}, globalFlags(&cfg)...),
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			cases, err := repo.ListCases(ctx, cfg.ownerID())
			if err != nil {
				return goerr.Wrap(err, "failed to list cases")
			}

			w := c.Root().Writer
			if len(cases) == 0 {
				fmt.Fprintf(w, "No cases uploaded yet\n")
				return nil
			}

			for _, doc := range cases {
				status := "undecided"
				if doc.Decided {
					status = "decided"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					doc.ID,
					doc.Filename,
					status,
					doc.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			return nil
		},
	}
}
