package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/SophieeeeeChen/lawai/pkg/model"
	"github.com/SophieeeeeChen/lawai/pkg/usecase/ask"
)

func askCommand() *cli.Command {
	var (
		cfg      config
		caseID   string
		question string
		topic    string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "case-id",
			Aliases:     []string{"c"},
			Usage:       "Case ID to ask about",
			Sources:     cli.EnvVars("LAWAI_CASE_ID"),
			Destination: &caseID,
			Required:    true,
		},
		&cli.StringFlag{
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "Single question (omit for an interactive session)",
			Destination: &question,
		},
		&cli.StringFlag{
			Name:        "topic",
			Aliases:     []string{"t"},
			Usage:       "Topic override; detected from the question when omitted",
			Destination: &topic,
		},
	}
	flags = append(flags, ownerFlag(&cfg))
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "ask",
		Usage: "Ask questions about an uploaded case",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := cfg.newRuntime(ctx, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			s := &askSession{
				uc:     rt.ask,
				owner:  cfg.ownerID(),
				caseID: model.CaseID(caseID),
				out:    c.Root().Writer,
			}

			if question != "" {
				return s.one(ctx, question, model.Topic(topic))
			}
			return s.interactive(ctx, model.Topic(topic))
		},
	}
}

// askSession drives one question-answer exchange, including any clarification
// round it opens.
type askSession struct {
	uc     *ask.UseCase
	owner  model.OwnerID
	caseID model.CaseID
	out    io.Writer

	rl    *readline.Instance
	stdin *bufio.Reader
}

func (s *askSession) one(ctx context.Context, question string, topic model.Topic) error {
	out, err := s.spin(func() (*ask.Output, error) {
		return s.uc.Ask(ctx, ask.Input{
			Owner:    s.owner,
			CaseID:   s.caseID,
			Question: question,
			Topic:    topic,
		})
	})
	if err != nil {
		return err
	}

	for out.ClarificationNeeded {
		next, err := s.clarify(ctx, out)
		if err != nil {
			return err
		}
		if next == nil {
			fmt.Fprintf(s.out, "Skipped; ask again once you have those details.\n")
			return nil
		}
		out = next
	}

	s.render(out)
	return nil
}

func (s *askSession) interactive(ctx context.Context, topic model.Topic) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryLimit:    200,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return goerr.Wrap(err, "failed to open terminal")
	}
	defer rl.Close()
	s.rl = rl

	fmt.Fprintf(s.out, "Ask about case %s. Type 'exit' to quit, '/reset' to clear the session, '/history' for the QA log.\n", s.caseID)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return nil // EOF
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/reset":
			s.uc.Reset(s.owner, s.caseID)
			fmt.Fprintf(s.out, "Session cleared.\n")
			continue
		case line == "/history":
			if err := s.history(ctx); err != nil {
				return err
			}
			continue
		}

		if err := s.one(ctx, line, topic); err != nil {
			if errors.Is(err, model.ErrRetrievalUnavailable) {
				fmt.Fprintf(s.out, "Retrieval is unavailable right now, try again shortly.\n")
				continue
			}
			return err
		}
	}
}

// clarify prompts the clarification questions one by one, then resubmits.
// Blank input skips a question; skipped facts come back in the next round.
func (s *askSession) clarify(ctx context.Context, out *ask.Output) (*ask.Output, error) {
	fmt.Fprintf(s.out, "\nTo answer well I need a few more facts about %s:\n", out.Topic.Label())

	answers := make(map[string]string, len(out.MissingFields))
	for i, field := range out.MissingFields {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, out.Questions[i])
		answer, err := s.readAnswer()
		if err != nil {
			return nil, err
		}
		if answer != "" {
			answers[field] = answer
		}
	}

	if len(answers) == 0 {
		return nil, nil
	}

	return s.spin(func() (*ask.Output, error) {
		return s.uc.SubmitClarification(ctx, s.owner, s.caseID, answers)
	})
}

func (s *askSession) readAnswer() (string, error) {
	if s.rl != nil {
		s.rl.SetPrompt("  answer: ")
		defer s.rl.SetPrompt("> ")
		line, err := s.rl.Readline()
		if err != nil {
			return "", goerr.Wrap(err, "failed to read answer")
		}
		return strings.TrimSpace(line), nil
	}

	// single-question mode reads answers from stdin
	fmt.Fprintf(s.out, "  answer: ")
	if s.stdin == nil {
		s.stdin = bufio.NewReader(os.Stdin)
	}
	line, err := s.stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", goerr.Wrap(err, "failed to read answer")
	}
	return strings.TrimSpace(line), nil
}

func (s *askSession) spin(fn func() (*ask.Output, error)) (*ask.Output, error) {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(os.Stderr), spinner.WithSuffix(" thinking..."))
	sp.Start()
	defer sp.Stop()
	return fn()
}

func (s *askSession) render(out *ask.Output) {
	fmt.Fprintf(s.out, "\n%s\n", out.Answer)
	if len(out.Citations) > 0 {
		fmt.Fprintf(s.out, "\nSources:\n")
		for _, cite := range out.Citations {
			name := cite.CaseName
			if name == "" {
				name = cite.Source
			}
			fmt.Fprintf(s.out, "  [%s] %s (%s) score=%.3f\n", cite.SourceType, name, cite.Section, cite.Score)
		}
	}
}

func (s *askSession) history(ctx context.Context) error {
	records, err := s.uc.History(ctx, s.owner, s.caseID, 0)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(s.out, "No questions recorded for this case yet.\n")
		return nil
	}
	for _, qa := range records {
		fmt.Fprintf(s.out, "%s\tQ: %s\n\tA: %s\n",
			qa.CreatedAt.Format("2006-01-02 15:04:05"), qa.Question, qa.Answer)
	}
	return nil
}
