// Package cli provides command-line interface handling for omniparser.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information set at build time.
	version   = "dev"
	buildDate = "unknown"

	configFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "omniparser",
	Short: "Parse EPUB, PDF, DOCX, HTML, Markdown, text, and photo files into a normalized Document",
	Long: `omniparser - universal document-parsing engine

Parses EPUB, PDF, DOCX, HTML, Markdown, plain-text, and photo files into a
single normalized Document model: content, chapters, images, metadata, and
processing info.

Examples:
  # Parse a single file, human-readable summary
  omniparser parse book.epub

  # Parse a URL
  omniparser parse https://example.com/article

  # Full Document as JSON
  omniparser parse report.pdf --format json

  # Extract images alongside the parse
  omniparser parse book.epub --image-output-dir ./images`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to an omniparser config file (default $HOME/.omniparser.yaml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formatsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("omniparser version %s\n", version)
		cmd.Printf("Built: %s\n", buildDate)
	},
}
