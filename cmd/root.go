package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/killallgit/textcast/pkg/config"
)

// skipConfigAnnotation marks commands that run without loading configuration.
const skipConfigAnnotation = "textcast/skip-config"

var (
	cfgFile   string
	appConfig *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "textcast",
	Short: "Text to speech podcast service",
	Long: `Textcast - turn articles and documents into a private podcast feed

Text is normalised for speech, split on sentence boundaries when it is
too long for a single synthesis call, synthesized with Google Cloud
Text-to-Speech and joined with ffmpeg. Episodes are kept in a JSON
metadata document next to their audio files and published as an RSS feed.

Features:
  • Chunked synthesis with ordered, lossless concatenation
  • Bounded episode retention with oldest-first eviction
  • Integrity checks and orphaned audio cleanup
  • Cached, gzip-capable podcast feed`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "enable JSON formatted logs")
}

// setup loads configuration, unless the command opts out, and then
// configures logging so flags override the config file.
func setup(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")

	if cmd.Annotations[skipConfigAnnotation] == "true" {
		return setupLogging(level, jsonLogs)
	}

	if err := config.InitWithFile(cfgFile); err != nil {
		return err
	}
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	if level == "" {
		level = cfg.Logging.Level
	}
	if !cmd.Flags().Changed("json-logs") {
		jsonLogs = cfg.Logging.Format == "json"
	}
	return setupLogging(level, jsonLogs)
}
