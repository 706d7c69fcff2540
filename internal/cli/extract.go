package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/listing-docs/internal/document"
	"github.com/joseph-ayodele/listing-docs/internal/listing"
	"github.com/joseph-ayodele/listing-docs/internal/llm"
	"github.com/joseph-ayodele/listing-docs/internal/pipeline"
)

var (
	extractNoEnhance bool
	extractDraft     bool
	extractQuiet     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract listing fields from one document",
	Long: `Extract uploads the document, asks the document model for listing fields,
looks up missing details by address and prints the merged result as JSON.

Progress is written to stderr; the result goes to stdout.`,
	Example: `  listingdocs extract listing_agreement.pdf
  listingdocs extract --draft --no-enhance appraisal.png`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractNoEnhance, "no-enhance", false, "skip the web-search lookup")
	extractCmd.Flags().BoolVar(&extractDraft, "draft", false, "also print the listing draft built from the fields")
	extractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false, "do not print progress")
}

type extractOutput struct {
	Document     document.Document `json:"document"`
	RequestID    string            `json:"request_id"`
	Fields       llm.FieldMap      `json:"fields"`
	Enhanced     []string          `json:"enhanced,omitempty"`
	Degraded     bool              `json:"degraded"`
	Warnings     []string          `json:"warnings,omitempty"`
	FormatIssues []llm.FieldIssue  `json:"format_issues,omitempty"`
	Draft        *draftOutput      `json:"draft,omitempty"`
}

type draftOutput struct {
	Listing     *listing.Draft     `json:"listing"`
	AIPopulated []string           `json:"ai_populated"`
	Completion  listing.Completion `json:"completion"`
	Percent     int                `json:"percent"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := document.Inspect(filepath.Base(path), content, document.Options{
		MaxUploadMB: cfg.Extract.MaxUploadMB,
		URL:         "file://" + path,
	})
	if err != nil {
		return err
	}

	proc, err := newProcessor(extractNoEnhance)
	if err != nil {
		return err
	}

	var onProgress pipeline.ProgressFunc
	if !extractQuiet {
		errOut := cmd.ErrOrStderr()
		onProgress = func(p int) { fmt.Fprintf(errOut, "progress: %d%%\n", p) }
	}

	res, err := proc.ProcessDocument(cmd.Context(), doc.Upload(content), onProgress)
	if err != nil {
		return err
	}

	out := extractOutput{
		Document:     doc,
		RequestID:    res.RequestID,
		Fields:       res.Fields,
		Enhanced:     res.Enhanced,
		Degraded:     res.Degraded,
		Warnings:     res.Warnings,
		FormatIssues: res.FormatIssues,
	}
	if extractDraft {
		d := listing.NewDraft()
		populated := d.Apply(res.Fields)
		c := d.Completion(true)
		out.Draft = &draftOutput{Listing: d, AIPopulated: populated, Completion: c, Percent: c.Percent()}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
