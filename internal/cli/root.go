// Package cli provides the command-line interface for listingdocs.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/listing-docs/internal/common"
	"github.com/joseph-ayodele/listing-docs/internal/llm/openai"
	"github.com/joseph-ayodele/listing-docs/internal/pipeline"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	verbose    bool

	cfg         *common.Config
	logger      *slog.Logger
	closeLogger func() error
)

var rootCmd = &cobra.Command{
	Use:   "listingdocs",
	Short: "Extract listing fields from property documents",
	Long: `listingdocs reads property documents (PDF, JPEG, PNG), asks a document
model for the listing fields they contain, fills gaps with a web-search model
and reports the merged result.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = common.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		level := common.ParseLogLevel(cfg.Log.Level)
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogger = common.SetupLogger(cfg.Log.File, level)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// Execute adds all child commands to the root command and runs it. ctx is
// handed to every command and cancels in-flight extractions.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file overlaid on environment settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
}

// newProcessor validates the model settings and wires the pipeline.
func newProcessor(skipEnhancement bool) (*pipeline.Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := openai.NewClient(openai.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		SearchModel:   cfg.LLM.SearchModel,
		MaxTokens:     cfg.LLM.MaxTokens,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		UploadPurpose: cfg.LLM.UploadPurpose,
		Location: openai.SearchLocation{
			Country: cfg.LLM.SearchCountry,
			Region:  cfg.LLM.SearchRegion,
		},
		Retry: openai.RetryPolicy{
			MaxAttempts:     cfg.Retry.MaxAttempts,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
		},
	}, logger)
	return pipeline.NewProcessor(logger, pipeline.Config{
		SkipEnhancement: skipEnhancement || !cfg.Extract.EnhanceEnabled,
	}, client), nil
}
