package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerline-dev/ledgerline/internal/config"
	"github.com/ledgerline-dev/ledgerline/internal/consolidate"
	"github.com/ledgerline-dev/ledgerline/internal/fx"
	"github.com/ledgerline-dev/ledgerline/internal/importer"
	"github.com/ledgerline-dev/ledgerline/internal/model"
	"github.com/ledgerline-dev/ledgerline/internal/refdata"
	"github.com/ledgerline-dev/ledgerline/internal/resolver"
	"github.com/ledgerline-dev/ledgerline/internal/rules"
	"github.com/ledgerline-dev/ledgerline/internal/runlog"
	"github.com/ledgerline-dev/ledgerline/internal/store"
	"github.com/ledgerline-dev/ledgerline/internal/store/memory"
	"github.com/ledgerline-dev/ledgerline/internal/store/mysql"
)

func newRunCommand() *cobra.Command {
	var configPath string
	var file string
	var format string
	var dryRun bool
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Consolidate all unprocessed statement rows for this account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runBatch(cfg, file, format, dryRun, autoMigrate)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "ledgerline.yaml", "config file")
	cmd.Flags().StringVar(&file, "file", "", "read rows from a statement CSV instead of the database")
	cmd.Flags().StringVar(&format, "format", "statement", "statement file format")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify without writing entries or marking rows")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "create engine tables before running")

	return cmd
}

func runBatch(cfg *config.Config, file, format string, dryRun, autoMigrate bool) error {
	logger := config.NewLogger(cfg.Log)

	// Interrupts stop the batch between rows; committed rows stay
	// committed and the run is resumable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mysql.Open()
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	if autoMigrate {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("migrating store: %w", err)
		}
	}

	ref, err := refdata.Load(ctx, db)
	if err != nil {
		return err
	}
	baseCurrency, ok := ref.CurrencyByCode(cfg.Account.Currency)
	if !ok {
		return fmt.Errorf("account currency %q not in currency table", cfg.Account.Currency)
	}

	ruleSet, err := db.Rules(ctx, cfg.Account.Scheme)
	if err != nil {
		return err
	}
	evaluator := rules.NewEvaluator(ruleSet, model.Columns(), logger)

	var rows store.RowSource = db
	var sink store.EntrySink = db
	if file != "" {
		rows, err = rowsFromFile(file, format)
		if err != nil {
			return err
		}
	}
	if dryRun {
		logger.Info("dry run: entries will not be written")
		sink = memory.NewStore()
	}

	res := resolver.New(evaluator, ref, baseCurrency.ID, logger)
	norm := fx.New(ref, baseCurrency.ID, logger)
	writer := consolidate.NewWriter(rows, sink, res, norm, logger)

	summary, runErr := writer.Run(ctx)
	summary.Diagnostics = append(evaluator.Diagnostics(), summary.Diagnostics...)
	printSummary(summary)

	if !dryRun {
		entries := runlog.FromDiagnostics(cfg.Account.Scheme, time.Now(), summary.Diagnostics)
		if err := runlog.Append(".", entries); err != nil {
			logger.WithError(err).Warn("could not write run log")
		}
	}

	if runErr != nil {
		return fmt.Errorf("batch aborted: %w", runErr)
	}
	return nil
}

// rowsFromFile loads a statement CSV into an in-memory row source.
func rowsFromFile(path, format string) (store.RowSource, error) {
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return nil, fmt.Errorf("no parser for format %q", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	st := memory.NewStore()
	st.AddRows(parsed...)
	return st, nil
}

func printSummary(summary *model.Summary) {
	fmt.Printf("selected:              %d\n", summary.Selected)
	fmt.Printf("written:               %d\n", summary.Written)
	fmt.Printf("matched by rule:       %d\n", summary.MatchedByRule)
	fmt.Printf("matched by memo:       %d\n", summary.MatchedByPaymentMemo)
	fmt.Printf("matched by tax id:     %d\n", summary.MatchedByTaxID)
	fmt.Printf("unmatched:             %d\n", summary.Unmatched)
	fmt.Printf("skipped duplicates:    %d\n", summary.SkippedDuplicate)
	fmt.Printf("skipped invalid dates: %d\n", summary.SkippedInvalidDate)
	fmt.Printf("rates missing:         %d\n", summary.RateMissing)

	if len(summary.Diagnostics) > 0 {
		fmt.Printf("\ndiagnostics (%d):\n", len(summary.Diagnostics))
		for _, d := range summary.Diagnostics {
			fmt.Printf("  %s\n", d)
		}
	}
}
