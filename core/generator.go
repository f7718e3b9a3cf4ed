package core

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/kb"
	"github.com/signalsfoundry/tle-generator/model"
)

const tracerName = "github.com/signalsfoundry/tle-generator/core"

// MetricsRecorder receives per-record and per-batch outcomes. kind is the
// ErrorKind of the record's failure, or "none" on success.
type MetricsRecorder interface {
	RecordProcessed(kind string)
	BatchCompleted(records int, elapsed time.Duration, err error)
}

// Generator turns a source table into an ordered batch of element sets.
type Generator struct {
	cfg     Config
	schema  Schema
	workers int
	log     logging.Logger
	metrics MetricsRecorder
}

// Option customises a Generator.
type Option func(*Generator)

// WithSchema overrides the positional column layout.
func WithSchema(s Schema) Option {
	return func(g *Generator) { g.schema = s }
}

// WithWorkers bounds the number of rows processed concurrently. Values below
// one select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(g *Generator) { g.workers = n }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(g *Generator) { g.metrics = m }
}

// NewGenerator validates cfg and returns a Generator bound to it.
func NewGenerator(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:    cfg,
		schema: DefaultSchema,
		log:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = runtime.GOMAXPROCS(0)
	}
	return g, nil
}

// Generate normalizes, derives and assembles every row of table. Catalog
// numbers follow row order starting at 1 regardless of the order in which
// workers finish. Any failing row aborts the whole batch; when several rows
// fail, the error of the lowest row index is returned.
func (g *Generator) Generate(ctx context.Context, table model.Table) (batch *model.Batch, err error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "tlegen.Generate")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if g.metrics != nil {
			g.metrics.BatchCompleted(batch.Len(), time.Since(start), err)
		}
	}()

	n := table.Len()
	span.SetAttributes(attribute.Int("tlegen.rows", n), attribute.Int("tlegen.workers", g.workers))
	if n == 0 {
		return nil, ErrEmptyBatch
	}
	if n > maxCatalogNumber {
		return nil, &FieldOverflowError{Row: maxCatalogNumber, Field: "catalog_number", Value: fmt.Sprint(n), Width: CatalogNumberWidth}
	}
	if g.cfg.SpareSlotsPerPlane > 0 {
		g.log.Warn(ctx, "spare catalog slots per plane are configured but not applied to numbering",
			logging.Int("spare_slots_per_plane", g.cfg.SpareSlotsPerPlane))
	}

	catalog := kb.NewKnowledgeBase()
	unsubscribe := catalog.Subscribe(func(ev kb.Event) {
		g.log.Debug(ctx, "element set assembled",
			logging.Int("catalog_number", ev.Record.CatalogNumber),
			logging.String("title", ev.Record.TitleLine))
	})
	defer unsubscribe()

	names := make([]string, n)
	errs := make([]error, n)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, row := range table.Rows {
		i, row := i, row // per-iteration copies (go directive is below 1.22)
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			rec, name, err := g.processRow(table.Columns, row, i)
			if g.metrics != nil {
				g.metrics.RecordProcessed(ErrorKind(err))
			}
			if err != nil {
				errs[i] = err
				return nil
			}
			names[i] = name
			return catalog.AddRecord(rec)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, name := range names {
		if name != names[0] {
			return nil, &MalformedRowError{
				Row:    i,
				Column: "system_name",
				Value:  name,
				Reason: fmt.Sprintf("system name differs from batch system %q", names[0]),
			}
		}
	}
	if catalog.Len() != n || !catalog.Contiguous() {
		return nil, fmt.Errorf("catalog holds %d records for %d rows", catalog.Len(), n)
	}

	batch = &model.Batch{
		SystemName: names[0],
		Epoch:      g.cfg.Epoch,
		Records:    catalog.ListRecords(),
	}
	g.log.Info(ctx, "generated element sets",
		logging.String("system", batch.SystemName),
		logging.Int("records", batch.Len()),
		logging.Duration("elapsed", time.Since(start)))
	return batch, nil
}

// processRow runs the per-record pipeline for row index i.
func (g *Generator) processRow(columns []string, row []any, i int) (model.TleRecord, string, error) {
	in, err := NormalizeRow(g.schema, columns, row, i)
	if err != nil {
		return model.TleRecord{}, "", withRow(err, i)
	}
	derived, err := Derive(g.cfg, in)
	if err != nil {
		return model.TleRecord{}, "", withRow(err, i)
	}
	rec, err := Assemble(g.cfg, derived, i+1)
	if err != nil {
		return model.TleRecord{}, "", withRow(err, i)
	}
	return rec, in.SystemName, nil
}
