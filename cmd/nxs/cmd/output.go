package cmd

import (
	"fmt"
	"io"
	"strings"

	nixos "github.com/julas23/nixos/pkg"
	"github.com/julas23/nixos/pkg/configurator"
	"github.com/julas23/nixos/pkg/snapshot"
	"github.com/julas23/nixos/pkg/system/nix"
	"github.com/julas23/nixos/pkg/wizard"
)

// writeOutput writes the configuration module and the snapshot, then prints
// the summary to out.
func writeOutput(out io.Writer, cfg *nixos.InstallConfig) error {
	if err := writeArtifacts(cfg, wizard.Secrets{}); err != nil {
		return err
	}
	printResult(out, cfg, config.ConfigPath)
	return nil
}

// writeArtifacts writes the module, the snapshot and, when one was entered,
// the root password hash.
func writeArtifacts(cfg *nixos.InstallConfig, secrets wizard.Secrets) error {
	if err := nix.WriteConfig(config.ConfigPath, cfg); err != nil {
		return err
	}
	log.WithField("path", config.ConfigPath).Info("configuration written")

	if secrets.RootPasswordHash != "" && config.RootPasswordPath != "" {
		if err := nix.WriteRootPassword(config.RootPasswordPath, secrets.RootPasswordHash); err != nil {
			return err
		}
		log.WithField("path", config.RootPasswordPath).Info("root password hash written")
	}

	if config.SnapshotPath != "" {
		if err := snapshot.Save(config.SnapshotPath, cfg); err != nil {
			return err
		}
		log.WithField("path", config.SnapshotPath).Info("snapshot written")
	}
	return nil
}

func printResult(out io.Writer, cfg *nixos.InstallConfig, path string) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintf(out, "\n%s\nINSTALLATION CONFIGURATION SAVED\n%s\n", rule, rule)
	fmt.Fprintf(out, "\nConfiguration saved to: %s\n\nSummary:\n", path)
	for _, row := range configurator.Summary(cfg) {
		fmt.Fprintf(out, "  %-15s %s\n", row[0]+":", row[1])
	}
	fmt.Fprintln(out, rule)

	fmt.Fprintln(out, "\n# Shell variables:")
	for _, kv := range shellVars(cfg) {
		fmt.Fprintf(out, "%s=%s\n", kv[0], shellQuote(kv[1]))
	}
}

func shellVars(cfg *nixos.InstallConfig) [][2]string {
	vars := [][2]string{
		{"hostname", cfg.System.Hostname},
		{"username", cfg.User.Username},
		{"fullname", cfg.User.FullName},
	}
	if root, ok := cfg.Storage.Root(); ok {
		vars = append(vars,
			[2]string{"disk", root.Device},
			[2]string{"filesystem", root.Filesystem},
		)
	}
	return append(vars,
		[2]string{"graphics", string(cfg.Environment.Server)},
		[2]string{"desktop", cfg.Environment.Desktop},
	)
}

// shellQuote wraps s in single quotes, closing and reopening around
// embedded quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
