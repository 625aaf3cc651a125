package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rendimo/rendimo/internal/logger"
	"github.com/rendimo/rendimo/internal/output"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a structured record from a listing URL",
	Long: `Extract fetches one listing page and produces a normalized record.

Three strategies run in priority order: embedded structured data, the
page framework's injected state, then label-anchored DOM scanning. Lower
priority strategies only fill fields the higher ones missed.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	flags := extractCmd.Flags()
	flags.StringP("url", "u", "", "listing URL (required)")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "json", "output format: json, jsonl, yaml")
	flags.Bool("with-attempt", false, "include fetch metadata in the output")

	_ = extractCmd.MarkFlagRequired("url")
}

func runExtract(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rawURL, _ := cmd.Flags().GetString("url")

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

	dest := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		dest = f
	}

	format, _ := cmd.Flags().GetString("format")
	writer, err := output.NewWriter(dest, output.Format(format))
	if err != nil {
		return err
	}

	if withAttempt, _ := cmd.Flags().GetBool("with-attempt"); withAttempt {
		return writer.Write(map[string]any{
			"record":  result.Record,
			"attempt": result.Attempt,
		})
	}

	logger.Debug("writing record", "format", format)
	return writer.Write(result.Record)
}
