// Command seed loads the starter categories, makes sure the provider settings
// row exists and optionally inserts demo providers for local development.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cor0nius/localservices/internal/database"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

type seedOptions struct {
	dbURL   string
	envFile string
	demo    bool
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the local services directory database",
		Long: `seed upserts the starter service categories and ensures the provider
settings row exists. With --demo it also adds a handful of demo providers in
Manitoba and Illinois. Running it again is harmless.`,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("loading %s: %w", opts.envFile, err)
				}
			}
			if opts.dbURL == "" {
				opts.dbURL = os.Getenv("DB_URL")
			}
			if opts.dbURL == "" {
				return errors.New("no database: pass --db-url or set DB_URL")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.dbURL, "db-url", "", "PostgreSQL connection URL (defaults to $DB_URL)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to read before resolving $DB_URL")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "also insert demo providers")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall timeout")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func runSeed(ctx context.Context, opts *seedOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	db, err := sql.Open("postgres", opts.dbURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	s := &seeder{store: database.New(db), logger: logger}
	summary, err := s.run(ctx, opts.demo)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d categories (backend %s)", summary.Categories, summary.Backend)
	if opts.demo {
		fmt.Printf(", %d demo providers created, %d already present", summary.ProvidersCreated, summary.ProvidersSkipped)
	}
	fmt.Println()
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
