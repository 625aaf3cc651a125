package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rendimo/rendimo/internal/logger"
	"github.com/rendimo/rendimo/pkg/assistant"
	"github.com/rendimo/rendimo/pkg/market"
	"github.com/rendimo/rendimo/pkg/yield"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the investment assistant about a listing",
	Long: `Ask extracts a listing and starts a conversation about it with the
investment assistant. With a question argument it answers once and exits;
without one it opens an interactive session.

Requires ANTHROPIC_API_KEY or OPENAI_API_KEY.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	flags := askCmd.Flags()
	flags.StringP("url", "u", "", "listing URL (required)")
	flags.Float64P("rent", "r", 0, "expected monthly rent, enriches the assistant context")
	flags.Float64("temperature", 0.2, "sampling temperature")
	flags.Int("max-tokens", 1024, "response token limit")

	_ = askCmd.MarkFlagRequired("url")
}

func runAsk(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := assistant.FromEnv()
	if err != nil {
		if errors.Is(err, assistant.ErrNoProvider) {
			logError("no provider configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")
		}
		return err
	}
	logger.Debug("assistant provider selected", "provider", provider.Name(), "model", provider.Model())

	rawURL, _ := cmd.Flags().GetString("url")
	rent, _ := cmd.Flags().GetFloat64("rent")
	temperature, _ := cmd.Flags().GetFloat64("temperature")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")

	p, err := newPipeline()
	if err != nil {
		logError("%v", err)
		return err
	}
	defer p.Close()

	result, err := p.Extract(ctx, rawURL)
	if err != nil {
		logError("%v", err)
		if hint := failureHint(err); hint != "" {
			logError("%s", hint)
		}
		return err
	}
	rec := result.Record

	var yld *yield.Result
	if rent > 0 && rec.Price != nil {
		if y, err := yield.Gross(*rec.Price, rent); err == nil {
			yld = &y
		}
	}

	var cmp *market.Comparison
	if rec.City != "" && rec.Price != nil && rec.Surface != nil {
		client := market.New(market.DefaultConfig())
		if est, err := client.Estimate(ctx, rec.City, rec.PostalCode, rec.PropertyType); err == nil {
			if c, err := market.Compare(*rec.Price, *rec.Surface, est); err == nil {
				cmp = &c
			}
		}
	}

	a := assistant.New(provider,
		assistant.WithTemperature(temperature),
		assistant.WithMaxTokens(maxTokens),
	)
	a.SetListing(rec, yld, cmp)

	if len(args) == 1 {
		answer, err := a.Ask(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	return interactive(ctx, a, rec.Title)
}

// interactive runs a read-ask-print loop until EOF or an empty "exit".
func interactive(ctx context.Context, a *assistant.Assistant, title string) error {
	if title != "" {
		fmt.Printf("Listing: %s\n", title)
	}
	fmt.Println(`Ask anything about this listing ("exit" to quit).`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "reset":
			a.Reset()
			fmt.Println("Conversation cleared.")
			continue
		}

		answer, err := a.Ask(ctx, question)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logError("%v", err)
			continue
		}
		fmt.Println(answer)
	}
}
