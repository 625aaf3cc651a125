// Package commands implements the CLI commands for rendimo.
package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rendimo/rendimo/internal/logger"
	"github.com/rendimo/rendimo/pkg/fetch"
	"github.com/rendimo/rendimo/pkg/pipeline"
	"github.com/rendimo/rendimo/pkg/urlcheck"
)

var rootCmd = &cobra.Command{
	Use:   "rendimo",
	Short: "Extract and analyze French real-estate listings",
	Long: `Rendimo turns a listing URL into a normalized record and tells you
whether the asking price makes sense as a rental investment.

Examples:
  # Extract one listing as JSON
  rendimo extract -u "https://www.leboncoin.fr/ventes_immobilieres/123456"

  # Full analysis with an estimated rent of 650 €/month
  rendimo analyze -u "https://www.leboncoin.fr/ventes_immobilieres/123456" --rent 650

  # Ask a question about a listing
  rendimo ask -u "https://www.leboncoin.fr/ventes_immobilieres/123456" \
      "Ce bien est-il intéressant pour du locatif ?"`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.rendimo.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().String("fetch-mode", "static", "fetch mode: static, dynamic")
	rootCmd.PersistentFlags().Duration("timeout", 15*time.Second, "per-attempt request timeout")
	rootCmd.PersistentFlags().Int("max-attempts", 3, "retry budget for network and server errors")
	rootCmd.PersistentFlags().Duration("base-backoff", 2*time.Second, "initial retry backoff")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("fetch_mode", rootCmd.PersistentFlags().Lookup("fetch-mode"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("max_attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
	_ = viper.BindPFlag("base_backoff", rootCmd.PersistentFlags().Lookup("base-backoff"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".rendimo")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RENDIMO")
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initLogging configures logging from the persistent flags.
func initLogging() {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
	})
}

// retryPolicy builds the fetch budget from config.
func retryPolicy() fetch.RetryPolicy {
	policy := fetch.DefaultRetryPolicy()
	if n := viper.GetInt("max_attempts"); n > 0 {
		policy.MaxAttempts = n
	}
	if d := viper.GetDuration("timeout"); d > 0 {
		policy.Timeout = d
	}
	if d := viper.GetDuration("base_backoff"); d > 0 {
		policy.BaseBackoff = d
	}
	return policy
}

// newPipeline assembles a pipeline from the configured fetch mode and URL
// patterns.
func newPipeline() (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{}

	urlCfg := urlcheck.DefaultConfig()
	if hosts := viper.GetStringSlice("url_hosts"); len(hosts) > 0 {
		urlCfg.Hosts = hosts
	}
	if patterns := viper.GetStringSlice("url_patterns"); len(patterns) > 0 {
		urlCfg.PathPatterns = patterns
	}
	validator, err := urlcheck.New(urlCfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, pipeline.WithValidator(validator))

	switch mode := viper.GetString("fetch_mode"); mode {
	case "dynamic":
		fetcher, err := fetch.NewDynamic(retryPolicy())
		if err != nil {
			return nil, fmt.Errorf("dynamic fetcher: %w", err)
		}
		opts = append(opts, pipeline.WithFetcher(fetcher))
	case "static", "":
		opts = append(opts, pipeline.WithFetcher(fetch.NewStatic(retryPolicy())))
	default:
		return nil, fmt.Errorf("unknown fetch mode: %s", mode)
	}

	return pipeline.New(opts...)
}

// failureHint explains a typed pipeline failure and points at the manual
// entry path, which is always available.
func failureHint(err error) string {
	switch pipeline.KindOf(err) {
	case pipeline.KindInvalidURL:
		return "The URL is not a recognized sale listing. Check the address."
	case pipeline.KindFetchBlocked:
		return "The site refused the request. Try again later or enter the listing manually with 'analyze --manual'."
	case pipeline.KindFetchNotFound:
		return "The listing no longer exists (removed or sold)."
	case pipeline.KindFetchNetworkError, pipeline.KindFetchServerError:
		return "The site could not be reached. Check your connection or retry."
	case pipeline.KindInsufficientData:
		return "The page did not contain enough data (price plus surface or rooms). Enter the listing manually with 'analyze --manual'."
	default:
		return ""
	}
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
