package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ayo6706/txledger/internal/config"
	"github.com/ayo6706/txledger/internal/db"
	"github.com/ayo6706/txledger/internal/observability"
	"github.com/ayo6706/txledger/internal/report"
	"github.com/ayo6706/txledger/internal/repository"
	"github.com/ayo6706/txledger/internal/service"
	"github.com/ayo6706/txledger/internal/txcsv"
	"go.uber.org/zap"
)

// Exit codes returned by RunCLI.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var errUsage = errors.New("usage")

// RunCLI replays the transaction file named in args and prints the account table to
// stdout. Diagnostics go to stderr; stdout stays empty when the run fails.
func RunCLI(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	err := runCLI(ctx, args, stdout, stderr)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage):
		return ExitUsage
	default:
		fmt.Fprintf(stderr, "txledger: %v\n", err)
		return ExitError
	}
}

func runCLI(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("txledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "csv", "output format: csv or json")
	snapshot := fs.Bool("snapshot", false, "also store the final accounts in Postgres (DATABASE_URL)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: txledger [-format csv|json] [-snapshot] transactions.csv")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newStreamLogger(cfg.LogLevel, stderr)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()

	var out report.Writer
	switch *format {
	case "csv":
		out = report.NewCSVWriter(stdout, cfg.OutputPrecision)
	case "json":
		out = report.NewJSONWriter(stdout, cfg.OutputPrecision)
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", *format)
		return errUsage
	}

	if *snapshot {
		if cfg.DatabaseURL == "" {
			return errors.New("-snapshot requires DATABASE_URL")
		}
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		repo := repository.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		// The snapshot goes first so a database failure leaves stdout empty.
		out = report.Multi{report.NewSnapshotWriter(repo, cfg.OutputPrecision), out}
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	_, err = service.NewBatchService(logger).Run(ctx, txcsv.NewReader(f), out)
	return err
}
