package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/julas23/nixos/pkg/validate"
	"github.com/spf13/cobra"
)

var validators = map[string]validate.Func{
	"hostname":   validate.Hostname,
	"username":   validate.Username,
	"fullname":   validate.FullName,
	"group":      validate.GroupName,
	"disk":       validate.DiskPath,
	"vg":         validate.VGName,
	"lv":         validate.LVName,
	"pool":       validate.PoolName,
	"uid":        validate.NumericID("UID"),
	"gid":        validate.NumericID("GID"),
	"mountpoint": validate.Mountpoint,
	"package":    validate.PackageName,
	"version":    validate.StateVersion,
}

func validatorNames() []string {
	names := make([]string, 0, len(validators))
	for name := range validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var validateCmd = &cobra.Command{
	Use:       "validate KIND VALUE",
	Short:     "Check a single value against an installer rule",
	Long:      "Check a single value. KIND is one of: " + strings.Join(validatorNames(), ", ") + ".",
	Args:      cobra.ExactArgs(2),
	ValidArgs: validatorNames(),
	// Needs neither config nor logging.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		check, ok := validators[args[0]]
		if !ok {
			return fmt.Errorf("unknown kind %q, expected one of %s", args[0], strings.Join(validatorNames(), ", "))
		}
		if err := check(args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
