package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/omniparser-go/omniparser/internal/model"
	"github.com/omniparser-go/omniparser/internal/registry"
)

// Human-readable output symbols.
const (
	symbolSuccess = "✓"
	symbolWarning = "⚠"
	symbolError   = "✗"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported file extensions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, ext := range registry.GetSupportedFormats() {
			cmd.Println(ext)
		}
	},
}

func outputHuman(cmd *cobra.Command, doc *model.Document) error {
	for _, w := range doc.ProcessingInfo.Warnings {
		cmd.PrintErrf("%s %s\n", symbolWarning, w)
	}

	title := doc.Metadata.Title
	if title == "" {
		title = "(untitled)"
	}

	cmd.Printf("%s Parsed with %s v%s\n", symbolSuccess, doc.ProcessingInfo.ParserUsed, doc.ProcessingInfo.ParserVersion)
	cmd.Printf("  Title:    %s\n", title)
	if author := doc.Metadata.PrimaryAuthor(); author != "" {
		cmd.Printf("  Author:   %s\n", author)
	}
	cmd.Printf("  Chapters: %d\n", len(doc.Chapters))
	cmd.Printf("  Images:   %d\n", len(doc.Images))
	cmd.Printf("  Words:    %d (~%d min read)\n", doc.WordCount, doc.EstimatedReadingTime)
	cmd.Printf("  Duration: %.3fs\n", doc.ProcessingInfo.ProcessingTime)
	return nil
}

func outputJSON(cmd *cobra.Command, doc *model.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func outputHumanError(cmd *cobra.Command, source string, err error) {
	cmd.PrintErrln()
	cmd.PrintErrf("%s Error parsing %s: %s\n", symbolError, source, err.Error())
	cmd.PrintErrln()
}

type jsonErrorOutput struct {
	Success bool   `json:"success"`
	Source  string `json:"source"`
	Code    int    `json:"code"`
	Error   string `json:"error"`
}

func outputJSONError(cmd *cobra.Command, source string, err error, code int) {
	out := jsonErrorOutput{Success: false, Source: source, Code: code, Error: err.Error()}
	data, _ := json.MarshalIndent(out, "", "  ")
	cmd.Println(string(data))
}
