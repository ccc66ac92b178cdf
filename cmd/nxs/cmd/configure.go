package cmd

import (
	"github.com/julas23/nixos/pkg/configurator"
	"github.com/julas23/nixos/pkg/selection"
	"github.com/julas23/nixos/pkg/system"
	"github.com/spf13/cobra"
)

var plain bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Run the question-by-question configurator",
	Long: `Ask for hostname, locale, hardware, desktop, services, user and storage
one prompt at a time, show a summary and write the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalogs, err := loadCatalogs()
		if err != nil {
			return err
		}

		var in selection.InputSource
		if plain {
			in = selection.NewReaderSource(cmd.InOrStdin(), cmd.OutOrStdout())
		} else {
			src, closer, err := selection.NewReadlineSource()
			if err != nil {
				return err
			}
			defer closer.Close()
			in = src
		}

		out := cmd.OutOrStdout()
		facts := detectFacts(cmd.Context())
		cfg := config.NewInstallConfig()
		system.ApplyNetwork(cfg, facts.Network)

		c := configurator.New(selection.NewEngine(in, out, log), catalogs, facts, log)
		if err := c.Run(cfg); err != nil {
			return err
		}
		return writeOutput(out, cfg)
	},
}

func init() {
	configureCmd.Flags().BoolVar(&plain, "plain", false, "read answers line by line without line editing")
	rootCmd.AddCommand(configureCmd)
}
