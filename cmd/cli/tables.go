package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/gridrisk/internal/domain/reference"
)

func newTablesCommand() *cobra.Command {
	tablesCmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect scoring tables",
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a scoring tables document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := reference.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (version %s, %d event categories, %d roles, %d countries)\n",
				args[0], t.Version, len(t.CategorySeverity), len(t.Roles), len(t.CountryMultipliers))
			return nil
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the built-in scoring tables as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return reference.Encode(cmd.OutOrStdout(), reference.Defaults())
		},
	}

	tablesCmd.AddCommand(validateCmd, dumpCmd)
	return tablesCmd
}
