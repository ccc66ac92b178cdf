package cmd

import (
	"errors"

	"github.com/julas23/nixos/pkg/snapshot"
	"github.com/julas23/nixos/pkg/system/nix"
	"github.com/spf13/cobra"
)

var (
	renderSnapshot string
	renderForce    bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the configuration module from a saved snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := renderSnapshot
		if path == "" {
			path = config.SnapshotPath
		}
		cfg, err := snapshot.Load(path)
		if err != nil {
			return err
		}
		if !cfg.IsComplete() && !renderForce {
			return errors.New("snapshot is incomplete, finish the wizard or pass --force")
		}
		if !cfg.IsComplete() {
			log.WithField("snapshot", path).Warn("rendering an incomplete configuration")
		}

		if err := nix.WriteConfig(config.ConfigPath, cfg); err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), cfg, config.ConfigPath)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderSnapshot, "snapshot", "", "snapshot to read (default is --snapshot-output)")
	renderCmd.Flags().BoolVar(&renderForce, "force", false, "render even if some phases are not validated")
	rootCmd.AddCommand(renderCmd)
}
