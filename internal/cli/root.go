// Package cli wires the recommendation pipeline into the albumatlas command.
package cli

import (
	"github.com/spf13/cobra"
)

// version is set by Execute from the build's release version
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "albumatlas",
	Short: "Album recommendations grounded in a curated catalogue",
	Long: `AlbumAtlas recommends albums from a curated catalogue.
Queries are embedded, matched against the vector store and answered
by a language model using only the matched album descriptions.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(releaseVersion string) error {
	version = releaseVersion
	return rootCmd.Execute()
}
