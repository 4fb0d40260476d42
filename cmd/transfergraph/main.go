// Command transfergraph reads a transfer table from disk and writes the
// network document as JSON.
//
//	transfergraph -in transfers.csv -out network.json
//	transfergraph -in export.txt -from "Sender IBAN" -to "Beneficiary IBAN"
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/transfergraph/core/internal/config"
	"github.com/transfergraph/core/internal/decode"
	"github.com/transfergraph/core/internal/export"
	"github.com/transfergraph/core/internal/logging"
	"github.com/transfergraph/core/internal/models"
	"github.com/transfergraph/core/internal/parser"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "transfergraph: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("transfergraph", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		in       string
		out      string
		pretty   bool
		override models.ColumnMapping
	)
	flags.StringVar(&in, "in", "", "Path to the transfer table (.csv, .tsv, .txt or .json)")
	flags.StringVar(&out, "out", "", "Write the network JSON here instead of stdout")
	flags.BoolVar(&pretty, "pretty", true, "Indent the JSON output")
	flags.StringVar(&override.From, "from", "", "Column holding the sender (skips detection)")
	flags.StringVar(&override.To, "to", "", "Column holding the receiver (skips detection)")
	flags.StringVar(&override.Amount, "amount", "", "Column holding the amount (skips detection)")
	flags.IntVar(&cfg.Ingest.Shards, "shards", cfg.Ingest.Shards, "Parallel shards for large tables")
	flags.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if in == "" {
		flags.Usage()
		return flag.ErrHelp
	}

	logger := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)

	table, err := decode.File(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	opts := cfg.Ingest.Options()
	opts.Override = override
	opts.Logger = logger.With("file", in)

	summary, err := parser.Ingest(ctx, table, opts)
	if err != nil {
		return err
	}

	network, err := export.FromSummary(summary)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	w := stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(network); err != nil {
		return fmt.Errorf("encode json failed: %w", err)
	}
	return nil
}
