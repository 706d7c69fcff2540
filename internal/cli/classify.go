package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/listing-docs/constants"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <filename>...",
	Short: "Print the document type inferred from each filename",
	Example: `  listingdocs classify "MLS Listing Agreement.pdf" floorplan.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, name := range args {
			fmt.Fprintf(out, "%s\t%s\n", name, constants.ClassifyDocument(name))
		}
		return nil
	},
}
