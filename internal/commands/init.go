package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerline-dev/ledgerline/internal/config"
)

func newInitCommand() *cobra.Command {
	var scheme string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter ledgerline.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir, scheme, currency)
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "parsing-rule scheme for this account (required)")
	_ = cmd.MarkFlagRequired("scheme")
	cmd.Flags().StringVar(&currency, "currency", "GEL", "the account's own currency code")

	return cmd
}

func runInit(dir, scheme, currency string) error {
	path := filepath.Join(dir, "ledgerline.yaml")
	if err := config.Save(path, config.Default(scheme, currency)); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
