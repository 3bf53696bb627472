package main

import (
	"context"
	"database/sql"
	"delivery-fleet-sim/internal/adapters/journal"
	"delivery-fleet-sim/internal/adapters/repositories"
	"delivery-fleet-sim/internal/config"
	"delivery-fleet-sim/internal/domain"
	"delivery-fleet-sim/internal/platform/db"
	"delivery-fleet-sim/internal/platform/obs"
	"delivery-fleet-sim/internal/ports"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	cfg         config.Config
	databaseURL string
	sqlitePath  string
	seedPath    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("dbtool")
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Manage the fleet simulation database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := obs.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			if opts.databaseURL != "" {
				cfg.DatabaseURL = opts.databaseURL
			}
			if opts.sqlitePath != "" {
				cfg.SQLitePath = opts.sqlitePath
				cfg.DatabaseURL = ""
			}
			if opts.seedPath != "" {
				cfg.SeedPath = opts.seedPath
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "Postgres connection string (overrides FLEETSIM_DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.sqlitePath, "sqlite", "", "SQLite file path (takes precedence over --database-url)")
	root.PersistentFlags().StringVar(&opts.seedPath, "seed", "", "seed JSON path (overrides FLEETSIM_SEED_PATH)")

	root.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newRunsCmd(opts),
		newDeliveriesCmd(opts),
		newJournalCmd(),
	)
	return root
}

func (o *options) open() (*sql.DB, repositories.Dialect, error) {
	if o.cfg.UsePostgres() {
		store, err := db.Open(o.cfg.DatabaseURL)
		return store, repositories.Postgres, err
	}
	store, err := db.OpenSQLite(o.cfg.SQLitePath)
	return store, repositories.SQLite, err
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			log.Info().Str("dialect", d.String()).Msg("initializing database schema")
			if err := repositories.InitSchema(cmd.Context(), store); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Info().Msg("schema ready")
			return nil
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load the seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			if err := repositories.InitSchema(ctx, store); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Info().Str("path", opts.cfg.SeedPath).Msg("seeding database")
			if err := repositories.SeedFromJSON(ctx, store, d, opts.cfg.SeedPath); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.Info().Msg("seeding complete")
			return nil
		},
	}
}

func newRunsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List saved simulation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := repositories.NewSQLDeliveryLog(store, d).ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tFINISHED\tDELIVERED\tMILES\tEXTRA\tRESULT")
			for _, r := range runs {
				result := "ok"
				if r.Failed {
					result = "failed: " + r.FailReason
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f\t%d\t%s\n",
					r.RunID, domain.SimTime(r.FinishedAt), r.Delivered, r.TotalMiles, r.ExtraRoutes, result)
			}
			return tw.Flush()
		},
	}
}

func newDeliveriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "deliveries RUN_ID",
		Short: "Print the delivery report for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, d, err := opts.open()
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := repositories.NewSQLDeliveryLog(store, d).ListDeliveries(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("no deliveries recorded for run %q", args[0])
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PACKAGE\tTRUCK\tDESTINATION\tDELIVERED\tDEADLINE\tNOTE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					r.PackageID, r.TruckID, r.Destination,
					domain.SimTime(r.DeliveredAt), deadline(r.Deadline), r.Annotation)
			}
			return tw.Flush()
		},
	}
}

func newJournalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal PATH",
		Short: "Dump a compressed event journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := journal.ReadAll(args[0])
			if err != nil {
				return err
			}
			return printEvents(cmd.OutOrStdout(), events)
		},
	}
}

func printEvents(w io.Writer, events []ports.SimEvent) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AT\tKIND\tTRUCK\tPACKAGE\tLOCATION\tDETAIL")
	for _, ev := range events {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			domain.SimTime(ev.At), ev.Kind, ev.TruckID, ev.PackageID, ev.Location, ev.Detail)
	}
	return tw.Flush()
}

func deadline(s int) string {
	if domain.SimTime(s) == domain.EndOfDay {
		return "EOD"
	}
	return domain.SimTime(s).String()
}
