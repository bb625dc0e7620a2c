package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "lawai",
		Usage: "Family law case analysis assistant",
		Commands: []*cli.Command{
			uploadCommand(),
			askCommand(),
			historyCommand(),
			listCommand(),
			showCommand(),
			corpusCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
