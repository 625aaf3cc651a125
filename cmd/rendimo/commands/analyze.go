package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rendimo/rendimo/internal/logger"
	"github.com/rendimo/rendimo/internal/output"
	"github.com/rendimo/rendimo/pkg/listing"
	"github.com/rendimo/rendimo/pkg/market"
	"github.com/rendimo/rendimo/pkg/normalize"
	"github.com/rendimo/rendimo/pkg/yield"
)

// analysis is the combined output of the analyze command.
type analysis struct {
	Record     *listing.Record    `json:"record" yaml:"record"`
	Yield      *yield.Result      `json:"yield,omitempty" yaml:"yield,omitempty"`
	Market     *market.Estimate   `json:"market,omitempty" yaml:"market,omitempty"`
	Comparison *market.Comparison `json:"comparison,omitempty" yaml:"comparison,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract a listing and analyze its investment potential",
	Long: `Analyze extracts a listing, then computes the gross rental yield from
the expected monthly rent and compares the asking price against recorded
sales in the same commune (DVF open data).

When extraction is impossible (blocked site, expired listing), --manual
skips fetching and takes the property facts from flags instead.`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	flags := analyzeCmd.Flags()
	flags.StringP("url", "u", "", "listing URL")
	flags.Float64P("rent", "r", 0, "expected monthly rent in euros")
	flags.Bool("no-market", false, "skip the market price comparison")
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.String("format", "text", "output format: text, json, yaml")

	flags.Bool("manual", false, "enter property facts by hand instead of fetching")
	flags.Float64("price", 0, "asking price in euros (manual mode)")
	flags.Float64("surface", 0, "living surface in m² (manual mode)")
	flags.Int("rooms", 0, "number of rooms (manual mode)")
	flags.String("city", "", "city (manual mode)")
	flags.String("postal-code", "", "postal code (manual mode)")
	flags.String("type", "", "property type: maison, appartement (manual mode)")
	flags.String("title", "", "listing title (manual mode)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	initLogging()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rawURL, _ := cmd.Flags().GetString("url")
	rent, _ := cmd.Flags().GetFloat64("rent")
	noMarket, _ := cmd.Flags().GetBool("no-market")
	manual, _ := cmd.Flags().GetBool("manual")

	var rec *listing.Record
	switch {
	case manual:
		var err error
		rec, err = manualRecord(cmd)
		if err != nil {
			logError("%v", err)
			return err
		}
	case rawURL == "":
		return fmt.Errorf("either --url or --manual is required")
	default:
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
		rec = result.Record
	}

	report := analysis{Record: rec}

	if rent > 0 && rec.Price != nil {
		y, err := yield.Gross(*rec.Price, rent)
		if err != nil {
			logError("yield: %v", err)
		} else {
			report.Yield = &y
		}
	}

	if !noMarket && rec.City != "" {
		client := market.New(market.DefaultConfig())
		est, err := client.Estimate(ctx, rec.City, rec.PostalCode, rec.PropertyType)
		if err != nil {
			logger.Warn("market estimate unavailable", "city", rec.City, "error", err)
		} else {
			report.Market = &est
			if rec.Price != nil && rec.Surface != nil {
				cmp, err := market.Compare(*rec.Price, *rec.Surface, est)
				if err == nil {
					report.Comparison = &cmp
				}
			}
		}
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
	if format == "text" {
		return renderAnalysis(dest, report)
	}

	writer, err := output.NewWriter(dest, output.Format(format))
	if err != nil {
		return err
	}
	return writer.Write(report)
}

// manualRecord builds a record from the manual-entry flags. It goes through
// the same normalizer as extracted data, so the usability gate and the
// derived price-per-m² apply identically.
func manualRecord(cmd *cobra.Command) (*listing.Record, error) {
	part := make(listing.Partial)

	price, _ := cmd.Flags().GetFloat64("price")
	part.Set(listing.FieldPrice, price)
	surface, _ := cmd.Flags().GetFloat64("surface")
	part.Set(listing.FieldSurface, surface)
	rooms, _ := cmd.Flags().GetInt("rooms")
	part.Set(listing.FieldRooms, rooms)

	city, _ := cmd.Flags().GetString("city")
	part.Set(listing.FieldCity, city)
	postal, _ := cmd.Flags().GetString("postal-code")
	part.Set(listing.FieldPostalCode, postal)
	propType, _ := cmd.Flags().GetString("type")
	part.Set(listing.FieldPropertyType, propType)
	title, _ := cmd.Flags().GetString("title")
	part.Set(listing.FieldTitle, title)

	source, _ := cmd.Flags().GetString("url")
	if source == "" {
		source = "manual://entry"
	}

	rec, err := normalize.New().Normalize([]listing.Partial{part}, source)
	if err != nil {
		return nil, fmt.Errorf("manual entry: %w", err)
	}
	return rec, nil
}

// renderAnalysis prints the human-readable report.
func renderAnalysis(w io.Writer, a analysis) error {
	rec := a.Record

	fmt.Fprintln(w, strings.Repeat("─", 52))
	if rec.Title != "" {
		fmt.Fprintf(w, "%s\n", rec.Title)
	}
	if rec.City != "" {
		loc := rec.City
		if rec.PostalCode != "" {
			loc += " (" + rec.PostalCode + ")"
		}
		fmt.Fprintf(w, "%s\n", loc)
	}
	fmt.Fprintln(w, strings.Repeat("─", 52))

	if rec.Price != nil {
		fmt.Fprintf(w, "Price         %s €\n", humanize.Comma(int64(*rec.Price)))
	}
	if rec.Surface != nil {
		fmt.Fprintf(w, "Surface       %s m²\n", humanize.FtoaWithDigits(*rec.Surface, 1))
	}
	if rec.Rooms != nil {
		fmt.Fprintf(w, "Rooms         %d\n", *rec.Rooms)
	}
	if rec.PricePerSqm != nil {
		fmt.Fprintf(w, "Price / m²    %s €\n", humanize.Comma(int64(*rec.PricePerSqm)))
	}

	if a.Yield != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Gross yield   %.2f %% (%s)\n", a.Yield.GrossYield, a.Yield.Rating)
		fmt.Fprintf(w, "Annual rent   %s €\n", humanize.Comma(int64(a.Yield.AnnualRent)))
	}

	if a.Market != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Market / m²   %s € (%s, reliability %d/100)\n",
			humanize.Comma(int64(a.Market.PricePerSqm)), a.Market.Source, a.Market.ReliabilityScore)
		if a.Market.TransactionCount > 0 {
			fmt.Fprintf(w, "Sample        %d sales over %s\n", a.Market.TransactionCount, a.Market.DataPeriod)
		}
		if a.Comparison != nil {
			sign := "+"
			if a.Comparison.PercentDifference < 0 {
				sign = ""
			}
			fmt.Fprintf(w, "Vs market     %s%.1f %% — %s\n",
				sign, a.Comparison.PercentDifference, a.Comparison.Verdict)
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 52))
	return nil
}
