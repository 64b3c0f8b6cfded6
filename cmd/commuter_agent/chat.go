package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jonathan/commuter-advisor/internal/advisor"
	"github.com/jonathan/commuter-advisor/internal/observability"
	"github.com/jonathan/commuter-advisor/internal/session"
	"github.com/jonathan/commuter-advisor/internal/survey"
	"github.com/spf13/cobra"
)

var (
	botColor    = color.New(color.FgCyan).SprintFunc()
	userColor   = color.New(color.FgGreen, color.Bold).SprintFunc()
	errorColor  = color.New(color.FgRed).SprintFunc()
	optionColor = color.New(color.FgHiBlack).SprintFunc()
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer the questionnaire and chat with the advisor in the terminal",
	Long: `Runs the commuter questionnaire interactively. Answer each question with the
option number or its text. Once your profile is known, ask for travel advice.
Type "quit" to leave.

Without GEMINI_API_KEY the questionnaire still works but advice requests get
the apology reply.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := loadData(ctx, cfg)
	if err != nil {
		return err
	}

	opts := session.ManagerOptions{
		Fallback: advisor.FallbackReply,
		Logger:   logger,
	}
	if cfg.APIKey != "" {
		adv, client, err := newAdvisor(ctx, cfg, data)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		opts.Responder = adv
	} else {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), errorColor("GEMINI_API_KEY is not set; advice is unavailable in this session."))
	}

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(cmd.OutOrStdout())
	}

	return chatLoop(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), session.NewManager(opts), printer)
}

// chatLoop drives one session from the greeting to the end of input.
// printer is optional; when set the classified profile is printed in full.
//
//nolint:errcheck // writing to the terminal; errors are not recoverable
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, m *session.Manager, printer *observability.Printer) error {
	s, err := m.Create(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, botColor(survey.Greeting))
	scanner := bufio.NewScanner(in)
	printed := 0

	for {
		q, asking := s.CurrentQuestion()
		if asking {
			printQuestion(out, q)
		}
		fmt.Fprint(out, userColor("> "))

		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if isQuit(line) {
			fmt.Fprintln(out, botColor("Goodbye! Have a pleasant trip."))
			return nil
		}
		if line == "" {
			continue
		}

		if asking {
			next, err := m.Answer(ctx, s.ID, resolveOption(q, line))
			var optErr *survey.ErrUnknownOption
			if errors.As(err, &optErr) {
				fmt.Fprintln(out, errorColor("Please choose one of the listed options."))
				continue
			}
			if err != nil {
				return err
			}
			s = next

			for _, msg := range s.Messages[printed:] {
				fmt.Fprintln(out, botColor(msg.Content))
			}
			printed = len(s.Messages)
			if printer != nil && s.Profile != "" {
				printer.PrintProfile(s.Profile, s.Rule)
			}
			continue
		}

		reply, err := m.Chat(ctx, s.ID, line)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, botColor(reply.Content))
	}
}

//nolint:errcheck // writing to the terminal; errors are not recoverable
func printQuestion(out io.Writer, q survey.Question) {
	fmt.Fprintln(out, botColor(q.Text))
	for i, opt := range q.Options {
		fmt.Fprintln(out, optionColor(fmt.Sprintf("  %d. %s", i+1, opt.Label)))
	}
}

// resolveOption turns an option number into its label. Anything else is
// passed through for the survey to normalise. The willingness scale is
// numbered 1 to 5 already, so numbers map onto themselves there.
func resolveOption(q survey.Question, input string) string {
	n, err := strconv.Atoi(input)
	if err != nil {
		return input
	}
	if opt, ok := q.OptionAt(n); ok {
		return opt.Label
	}
	return input
}

func isQuit(line string) bool {
	switch strings.ToLower(line) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}
