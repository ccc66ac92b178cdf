package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	nxssetup "github.com/julas23/nixos/cmd/nxs-setup"
	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/snapshot"
	"github.com/julas23/nixos/pkg/system"
	"github.com/julas23/nixos/pkg/version"
	"github.com/julas23/nixos/pkg/wizard"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var resume bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Start the multi-phase setup wizard",
	Long: `Walk through network, user, disk, environment and desktop phases in a
full screen interface, review the result and write the configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := initialConfig(resume)
		if err != nil {
			return err
		}

		facts := detectFacts(ctx)
		system.ApplyNetwork(cfg, facts.Network)

		session := wizard.NewSession(cfg, wizard.Options{
			Disks:        facts.Disks,
			CheckNetwork: networkChecker(ctx),
			Log:          log,
		})
		header := nxssetup.Header{Facts: facts, Version: version.GetNXSRelease().Short()}

		p := tea.NewProgram(nxssetup.NewModel(session, header, writeArtifacts), nxssetup.ProgramOptions()...)
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("failed to run setup TUI: %w", err)
		}

		m := final.(nxssetup.Model)
		switch m.Outcome() {
		case nixos.OutcomeCancelled:
			return nixos.ErrCancelled
		case nixos.OutcomeFailed:
			return m.Err()
		}
		printResult(cmd.OutOrStdout(), cfg, config.ConfigPath)
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&resume, "resume", false, "continue from the snapshot at --snapshot-output")
	rootCmd.AddCommand(setupCmd)
}

// initialConfig returns either the resumed snapshot or a fresh record seeded
// from the configuration.
func initialConfig(resume bool) (*nixos.InstallConfig, error) {
	if !resume {
		return config.NewInstallConfig(), nil
	}
	cfg, err := snapshot.Load(config.SnapshotPath)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"path":  config.SnapshotPath,
		"phase": cfg.CurrentPhase,
	}).Info("resumed from snapshot")
	return cfg, nil
}

func networkChecker(ctx context.Context) wizard.NetworkChecker {
	prober := system.NewHostProber(config, log)
	return func() system.NetworkFacts {
		return system.CheckNetwork(ctx, prober, config.ProbeTimeout, log)
	}
}
