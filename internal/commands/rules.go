package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline-dev/ledgerline/internal/config"
	"github.com/ledgerline-dev/ledgerline/internal/formula"
	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/store/mysql"
)

func newRulesCommand() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Rule-set operations",
	}
	rulesCmd.AddCommand(newRulesCheckCommand())
	return rulesCmd
}

func newRulesCheckCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compile every rule in the scheme and report errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runRulesCheck(cfg.Account.Scheme)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "ledgerline.yaml", "config file")
	return cmd
}

func runRulesCheck(scheme string) error {
	db, err := mysql.Open()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	ruleSet, err := db.Rules(context.Background(), scheme)
	if err != nil {
		return err
	}

	columns := model.Columns()
	failed := 0
	for _, rule := range ruleSet {
		if rule.IsLegacy() {
			continue
		}
		if _, err := formula.Compile(rule.Formula, columns); err != nil {
			failed++
			fmt.Printf("rule %d: %v\n", rule.Sequence, err)
		}
	}

	fmt.Printf("%d rules, %d failed to compile\n", len(ruleSet), failed)
	if failed > 0 {
		return fmt.Errorf("%d rules do not compile", failed)
	}
	return nil
}
