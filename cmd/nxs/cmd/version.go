package cmd

import (
	"fmt"

	"github.com/julas23/nixos/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get installer version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		version := version.GetNXSRelease()

		fmt.Printf("NXS Release: %s\n", version.Release)
		fmt.Printf("Module: %s\n", version.Module)
		fmt.Printf("Git: %s\n", version.Git.Commit)
		fmt.Printf("Dirty: %t\n", version.Git.Dirty)
		if !version.Git.LastCommit.IsZero() {
			fmt.Printf("Last Commit: %s\n", version.Git.LastCommit.Format("2006-01-02 15:04"))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
