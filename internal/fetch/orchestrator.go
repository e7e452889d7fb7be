package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"refcat/internal/catalog"
	"refcat/internal/history"
	"refcat/internal/logging"
	"refcat/internal/tabular"
)

// Orchestrator drives metadata resolution and artifact download for batches
// of identifiers. Failures stay confined to the identifier that caused them.
type Orchestrator struct {
	client    *catalog.Client
	resolver  *catalog.Resolver
	history   *history.Store
	outputDir string
	logger    *slog.Logger
}

// New constructs an orchestrator. history may be nil when the fetch-history
// store is disabled.
func New(client *catalog.Client, resolver *catalog.Resolver, store *history.Store, outputDir string, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client:    client,
		resolver:  resolver,
		history:   store,
		outputDir: outputDir,
		logger:    logging.NewComponentLogger(logger, "fetch"),
	}
}

// Process resolves metadata for every identifier once, then downloads and
// writes each resolved dictionary in input order. The returned outcomes
// mirror the input order exactly; a failed identifier yields an outcome with
// Err set and the batch continues.
func (o *Orchestrator) Process(ctx context.Context, oids []string) []Outcome {
	batchID := uuid.NewString()
	logger := o.logger.With(logging.String(logging.FieldBatchID, batchID))
	defer o.client.CloseIdle()

	resolved := o.resolver.ResolveAll(ctx, oids)

	outcomes := make([]Outcome, 0, len(oids))
	for _, oid := range oids {
		outcome := o.fetchOne(ctx, logger, resolved, oid, false)
		o.record(ctx, logger, batchID, outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// ProcessOne is the single-identifier convenience mode. With asTable true the
// decoded table is returned in the outcome and nothing is written to disk;
// otherwise the dictionary is persisted like a batch item. Resolution or
// download failure yields an outcome with Err set, never a panic.
func (o *Orchestrator) ProcessOne(ctx context.Context, oid string, asTable bool) Outcome {
	batchID := uuid.NewString()
	logger := o.logger.With(logging.String(logging.FieldBatchID, batchID))
	defer o.client.CloseIdle()

	resolved := o.resolver.ResolveAll(ctx, []string{oid})
	outcome := o.fetchOne(ctx, logger, resolved, oid, asTable)
	o.record(ctx, logger, batchID, outcome)
	return outcome
}

func (o *Orchestrator) fetchOne(ctx context.Context, logger *slog.Logger, resolved map[string]catalog.Passport, oid string, asTable bool) Outcome {
	passport, ok := resolved[oid]
	if !ok {
		err := catalog.Wrap(catalog.ErrResolution, "fetch", "resolve", fmt.Sprintf("%s: metadata not obtained", oid), nil)
		logger.Warn("metadata not obtained", logging.String(logging.FieldOID, oid))
		return Outcome{OID: oid, Err: err}
	}

	outcome := Outcome{
		OID:       oid,
		ShortName: passport.ShortName,
		Version:   passport.Version,
	}

	data, err := o.client.DownloadArchive(ctx, oid, passport.Version)
	if err != nil {
		logger.Error("download failed",
			logging.String(logging.FieldOID, oid),
			logging.String(logging.FieldVersion, passport.Version),
			logging.Error(err))
		outcome.Err = err
		return outcome
	}

	table, err := tabular.Decode(data)
	if err != nil {
		logger.Error("decode failed",
			logging.String(logging.FieldOID, oid),
			logging.Error(err))
		outcome.Err = err
		return outcome
	}
	outcome.RowCount = table.RowCount()

	if asTable {
		outcome.Table = table
		logger.Info("dictionary fetched",
			logging.String(logging.FieldOID, oid),
			logging.String("name", passport.ShortName),
			logging.Int("rows", outcome.RowCount))
		return outcome
	}

	path := filepath.Join(o.outputDir, OutputFilename(oid))
	if err := table.WriteCSV(path); err != nil {
		logger.Error("write failed",
			logging.String(logging.FieldOID, oid),
			logging.String("path", path),
			logging.Error(err))
		outcome.Err = err
		return outcome
	}
	outcome.Path = path

	logger.Info("dictionary saved",
		logging.String(logging.FieldOID, oid),
		logging.String("name", passport.ShortName),
		logging.String("path", path),
		logging.Int("rows", outcome.RowCount))
	return outcome
}

func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, batchID string, outcome Outcome) {
	if o.history == nil {
		return
	}
	rec := history.Record{
		BatchID:    batchID,
		OID:        outcome.OID,
		ShortName:  outcome.ShortName,
		Version:    outcome.Version,
		OutputPath: outcome.Path,
		RowCount:   outcome.RowCount,
		Status:     history.StatusFetched,
	}
	if outcome.Err != nil {
		rec.Status = history.StatusFailed
		rec.Detail = outcome.Err.Error()
	}
	if err := o.history.Append(ctx, rec); err != nil {
		logger.Warn("record fetch history", logging.Error(err))
	}
}

// OutputFilename derives the CSV filename for an identifier: dots become
// underscores, ".csv" is appended.
func OutputFilename(oid string) string {
	return strings.ReplaceAll(oid, ".", "_") + ".csv"
}
