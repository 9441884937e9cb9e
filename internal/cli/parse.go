package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/omniparser-go/omniparser/internal/cliconfig"
	"github.com/omniparser-go/omniparser/internal/errs"
	"github.com/omniparser-go/omniparser/internal/parser"
	"github.com/omniparser-go/omniparser/internal/registry"
)

// Exit codes returned by the parse command.
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitUnsupportedFmt = 2
	ExitFileRead       = 3
	ExitParsing        = 4
	ExitNetwork        = 5
	ExitValidation     = 6
)

var parseCmd = &cobra.Command{
	Use:   "parse <source>",
	Short: "Parse a file path or URL into a normalized Document",
	Long: `Parse a single file path or http(s) URL into a normalized Document and
print it as a human-readable summary or as JSON.`,
	Example: `  omniparser parse book.epub
  omniparser parse report.pdf --format json
  omniparser parse https://example.com/article --user-agent "my-bot/1.0"`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var (
	outputFmt       string
	noImages        bool
	noCleanText     bool
	noChapters      bool
	imageOutputDir  string
	minChapterLen   int
	useOCR          bool
	ocrLanguage     string
	timeoutSeconds  int
	rateLimitDelay  float64
	userAgent       string
	maxImageWorkers int
)

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&outputFmt, "format", "f", "human", "Output format: human or json")
	parseCmd.Flags().BoolVar(&noImages, "no-images", false, "Disable image extraction")
	parseCmd.Flags().BoolVar(&noCleanText, "no-clean", false, "Disable text cleaning")
	parseCmd.Flags().BoolVar(&noChapters, "no-chapters", false, "Disable chapter detection")
	parseCmd.Flags().StringVar(&imageOutputDir, "image-output-dir", "", "Directory to write extracted images into")
	parseCmd.Flags().IntVar(&minChapterLen, "min-chapter-length", 0, "Minimum chapter word count (0 uses the pipeline default)")
	parseCmd.Flags().BoolVar(&useOCR, "ocr", false, "Force-enable OCR for scanned PDF pages")
	parseCmd.Flags().StringVar(&ocrLanguage, "ocr-language", "", "OCR language code (default \"eng\")")
	parseCmd.Flags().IntVar(&timeoutSeconds, "timeout", 0, "HTML fetch timeout in seconds (0 uses the pipeline default)")
	parseCmd.Flags().Float64Var(&rateLimitDelay, "rate-limit-delay", 0, "Seconds to wait between HTML/image fetches")
	parseCmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent header for HTML fetches")
	parseCmd.Flags().IntVar(&maxImageWorkers, "max-image-workers", 0, "Concurrent image downloads (0 uses the pipeline default)")
}

func runParse(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := cliconfig.Load(configFile)
	if err != nil {
		return err
	}
	opts := cfg.Options()
	applyFlagOverrides(cmd, &opts)

	doc, err := registry.ParseDocument(source, opts)
	if err != nil {
		return handleParseError(cmd, source, err)
	}

	if outputFmt == "json" {
		return outputJSON(cmd, doc)
	}
	return outputHuman(cmd, doc)
}

// applyFlagOverrides layers explicit CLI flags over the config-file
// defaults. Only flags actually set by the user override; cobra tracks
// this via Changed.
func applyFlagOverrides(cmd *cobra.Command, opts *parser.Options) {
	flags := cmd.Flags()
	if flags.Changed("no-images") {
		v := !noImages
		opts.ExtractImages = &v
	}
	if flags.Changed("image-output-dir") {
		opts.ImageOutputDir = imageOutputDir
	}
	if flags.Changed("no-clean") {
		v := !noCleanText
		opts.CleanText = &v
	}
	if flags.Changed("no-chapters") {
		v := !noChapters
		opts.DetectChapters = &v
	}
	if flags.Changed("min-chapter-length") && minChapterLen > 0 {
		opts.MinChapterLength = &minChapterLen
	}
	if flags.Changed("ocr") {
		opts.UseOCR = &useOCR
	}
	if flags.Changed("ocr-language") {
		opts.OCRLanguage = ocrLanguage
	}
	if flags.Changed("timeout") && timeoutSeconds > 0 {
		opts.Timeout = &timeoutSeconds
	}
	if flags.Changed("rate-limit-delay") {
		opts.RateLimitDelay = &rateLimitDelay
	}
	if flags.Changed("user-agent") {
		opts.UserAgent = userAgent
	}
	if flags.Changed("max-image-workers") && maxImageWorkers > 0 {
		opts.MaxImageWorkers = &maxImageWorkers
	}
}

// handleParseError maps a returned error to the exit code table and
// prints it, terminating directly from the error path.
func handleParseError(cmd *cobra.Command, source string, err error) error {
	code := ExitGeneralError
	var unsupported *errs.UnsupportedFormatError
	var fileRead *errs.FileReadError
	var parsing *errs.ParsingError
	var network *errs.NetworkError
	var validation *errs.ValidationError

	switch {
	case errors.As(err, &unsupported):
		code = ExitUnsupportedFmt
	case errors.As(err, &fileRead):
		code = ExitFileRead
	case errors.As(err, &parsing):
		code = ExitParsing
	case errors.As(err, &network):
		code = ExitNetwork
	case errors.As(err, &validation):
		code = ExitValidation
	}

	if outputFmt == "json" {
		outputJSONError(cmd, source, err, code)
	} else {
		outputHumanError(cmd, source, err)
	}
	os.Exit(code)
	return nil
}
