package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/logging"
	"github.com/julas23/nixos/pkg/settings"
	"github.com/julas23/nixos/pkg/system"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = settings.New()

	// Resolved in PersistentPreRunE.
	config    nixos.ServerConfig
	log       *logrus.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "nxs",
	Short: "NixOS installation configuration wizard",
	Long: `nxs collects installation choices for a NixOS machine and writes them
as a declarative configuration module plus a resumable snapshot.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.ReadFile(v, cfgFile); err != nil {
			return err
		}
		c, err := settings.Resolve(v)
		if err != nil {
			return err
		}
		config = c

		l, closer, err := logging.New(logging.Options{
			File:    config.LogFile,
			Verbose: config.Verbose,
			Journal: true,
		})
		if err != nil {
			return err
		}
		log, logCloser = l, closer
		log.WithField("command", cmd.Name()).Debug("starting")
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if logCloser != nil {
		defer logCloser.Close()
	}

	outcome := nixos.OutcomeOf(err)
	switch outcome {
	case nixos.OutcomeCancelled:
		fmt.Fprintln(os.Stderr, "\nInstallation cancelled by user.")
	case nixos.OutcomeFailed:
		if log != nil {
			log.WithError(err).Error("run failed")
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", nixos.Reason(err))
	}
	return outcome.ExitCode()
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is "+settings.DefaultFile+")")
	f.BoolP("verbose", "v", false, "enable debug logging")
	f.String("log-file", nixos.DefaultLogFile, `log file, "-" for stderr`)
	f.String("catalog-dir", "", "directory overriding the built in catalogs")
	f.Duration("probe-timeout", nixos.DefaultProbeTimeout, "timeout for each hardware and network probe")
	f.String("output", nixos.DefaultConfigPath, "path of the generated configuration module")
	f.String("snapshot-output", nixos.DefaultSnapshotPath, "path of the choices snapshot")
	f.String("root-password-output", nixos.DefaultRootPasswordPath, "path of the root password hash")

	for key, flag := range map[string]string{
		settings.KeyLogVerbose:     "verbose",
		settings.KeyLogFile:        "log-file",
		settings.KeyCatalogDir:     "catalog-dir",
		settings.KeyProbeTimeout:   "probe-timeout",
		settings.KeyOutputConfig:   "output",
		settings.KeyOutputSnapshot: "snapshot-output",
		settings.KeyOutputRootPass: "root-password-output",
	} {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func loadCatalogs() (*system.Catalogs, error) {
	if config.CatalogDir == "" {
		return system.DefaultCatalogs(), nil
	}
	return system.LoadCatalogs(config.CatalogDir)
}

func detectFacts(ctx context.Context) system.Facts {
	prober := system.NewHostProber(config, log)
	start := time.Now()
	facts := system.Detect(ctx, prober, config.ProbeTimeout, log)
	log.WithField("took", time.Since(start)).Info("hardware detected")
	return facts
}
