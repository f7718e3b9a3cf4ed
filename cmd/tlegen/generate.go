package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/tle-generator/core"
	"github.com/signalsfoundry/tle-generator/internal/config"
	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/internal/observability"
	"github.com/signalsfoundry/tle-generator/internal/sink"
	"github.com/signalsfoundry/tle-generator/internal/source"
	"github.com/signalsfoundry/tle-generator/model"
)

func newGenerateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Read orbital rows and write TLEs_<system>.txt",
		Long: `Reads the orbit/phase join from a CSV export or a PostgreSQL database,
derives Keplerian mean motion for every satellite and writes one three-line
element set per row. Catalog numbers follow row order starting at 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := runGenerate(cmd.Context(), a.cfg, a.log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("source", "csv", "row source: csv or postgres")
	flags.String("input", "", "CSV export of the orbit/phase join (header row required)")
	flags.String("dsn", "", "PostgreSQL connection string")
	flags.String("query", "", "override the orbit/phase join query")
	flags.String("epoch", config.DefaultEpoch, "epoch stamped on every element set (RFC 3339 or YYYY-MM-DD)")
	flags.StringP("output-dir", "o", ".", "directory receiving TLEs_<system>.txt")
	flags.Int("workers", 0, "rows processed concurrently (0 = GOMAXPROCS)")
	flags.Int("spare-slots", 0, "spare catalog slots per plane (recorded only)")
	flags.Int("launch-number", 1, "launch number of the international designator")
	flags.String("launch-piece", "A", "launch piece of the international designator")
	flags.Bool("verify", false, "re-read the written file and propagate every element set")
	flags.Duration("verify-step", core.DefaultVerifyStep, "propagation step used by --verify")
	flags.String("metrics-textfile", "", "write Prometheus metrics to this textfile when done")
	bindFlags(a.v, flags, map[string]string{
		"source.kind":           "source",
		"source.path":           "input",
		"source.dsn":            "dsn",
		"source.query":          "query",
		"epoch":                 "epoch",
		"output_dir":            "output-dir",
		"workers":               "workers",
		"spare_slots_per_plane": "spare-slots",
		"launch_number":         "launch-number",
		"launch_piece":          "launch-piece",
		"verify":                "verify",
		"verify_step":           "verify-step",
		"metrics_textfile":      "metrics-textfile",
	})
	return cmd
}

// runGenerate executes one generation run and returns the written file path.
func runGenerate(ctx context.Context, cfg config.Config, log logging.Logger, reg prometheus.Registerer) (path string, err error) {
	ctx, log = logging.WithRunLogger(ctx, log)
	defer func() {
		if err != nil {
			log.Error(ctx, "generation failed", logging.Err(err), logging.String("kind", core.ErrorKind(err)))
		}
	}()

	coreCfg, err := cfg.CoreConfig()
	if err != nil {
		return "", err
	}

	collector, err := observability.NewGeneratorCollector(reg)
	if err != nil {
		return "", fmt.Errorf("init metrics: %w", err)
	}
	if cfg.MetricsTextfile != "" {
		defer func() {
			if werr := collector.WriteTextfile(cfg.MetricsTextfile); werr != nil {
				log.Warn(ctx, "failed to write metrics textfile", logging.Err(werr))
			}
		}()
	}

	table, err := loadTable(ctx, cfg.Source, log)
	if err != nil {
		return "", err
	}

	gen, err := core.NewGenerator(coreCfg,
		core.WithWorkers(cfg.Workers),
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
	)
	if err != nil {
		return "", err
	}
	batch, err := gen.Generate(ctx, table)
	if err != nil {
		return "", err
	}

	path, err = writeBatch(ctx, cfg.OutputDir, batch)
	if err != nil {
		return "", err
	}
	log.Info(ctx, "wrote element sets", logging.String("path", path), logging.Int("records", batch.Len()))

	if cfg.Verify {
		if _, err := verifyFile(ctx, path, cfg.VerifyStep, log); err != nil {
			return "", err
		}
	}
	return path, nil
}

func loadTable(ctx context.Context, cfg config.SourceConfig, log logging.Logger) (table model.Table, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tlegen.Load")
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.SetAttributes(attribute.Int("tlegen.rows", table.Len()))
		span.End()
	}()

	src, closer, err := openSource(ctx, cfg)
	if err != nil {
		return model.Table{}, err
	}
	defer closer.Close()

	start := time.Now()
	table, err = src.Load(ctx)
	if err != nil {
		return model.Table{}, err
	}
	log.Info(ctx, "loaded orbital rows",
		logging.String("source", cfg.Kind),
		logging.Int("rows", table.Len()),
		logging.Int("columns", len(table.Columns)),
		logging.Duration("elapsed", time.Since(start)))
	return table, nil
}

func openSource(ctx context.Context, cfg config.SourceConfig) (source.Source, io.Closer, error) {
	kind, err := source.ParseKind(cfg.Kind)
	if err != nil {
		return nil, nil, err
	}
	switch kind {
	case source.KindPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("postgres source requires --dsn or TLEGEN_SOURCE_DSN")
		}
		db, err := source.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return source.NewSQLSource(db, cfg.Query), dbCloser{db}, nil
	default:
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("csv source requires --input or TLEGEN_SOURCE_PATH")
		}
		return source.NewCSVSource(cfg.Path), nopCloser{}, nil
	}
}

func writeBatch(ctx context.Context, dir string, batch *model.Batch) (string, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "tlegen.Write")
	defer span.End()
	span.SetAttributes(attribute.String("tlegen.system", batch.SystemName), attribute.Int("tlegen.records", batch.Len()))

	path, err := sink.WriteFile(dir, batch)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return path, nil
}

type dbCloser struct{ db *sql.DB }

func (c dbCloser) Close() error { return c.db.Close() }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
