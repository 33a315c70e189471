package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/positionstats/pkg/archiver"
	"github.com/travigo/positionstats/pkg/config"
	"github.com/travigo/positionstats/pkg/ctdf"
	"github.com/travigo/positionstats/pkg/dataimporter"
	"github.com/travigo/positionstats/pkg/materializer"
	"github.com/travigo/positionstats/pkg/objectstore"
	"github.com/travigo/positionstats/pkg/stats/calculator"
)

type Report struct {
	Input     string
	StartTime time.Time
	Duration  time.Duration

	Documents       int
	RawRecords      int
	AcceptedRecords int
	RejectedRecords map[ctdf.RejectionReason]int

	Rows  map[string]int
	Sinks []materializer.Result

	ArchiveLocation string
	ArchiveError    error
}

// Snapshot is a batch taken through normalization and aggregation, before anything is
// written.
type Snapshot struct {
	Batch     *dataimporter.Batch
	Normalize ctdf.NormalizeStats
	Views     calculator.Views
}

func (s *Snapshot) Tables() []materializer.View {
	return []materializer.View{
		materializer.NewTable(ctdf.ViewVehicleLatest, s.Views.VehicleLatest),
		materializer.NewTable(ctdf.ViewRouteMetrics, s.Views.RouteMetrics),
		materializer.NewTable(ctdf.ViewTripMetrics, s.Views.TripMetrics),
	}
}

type Engine struct {
	Config config.Config

	// Now defaults to time.Now, tests pin it for stable archive keys.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}

	return e.Now()
}

// Compute loads the batch at input and derives the three views from it. Every failure is an
// input failure and wraps dataimporter.ErrInputUnavailable.
func (e *Engine) Compute(ctx context.Context, input string) (*Snapshot, error) {
	store, key, err := objectstore.Open(ctx, input, e.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dataimporter.ErrInputUnavailable, err)
	}

	batch, err := dataimporter.Load(ctx, store, key)
	if err != nil {
		return nil, err
	}

	records, normalizeStats := ctdf.Normalize(batch.Records)

	log.Info().
		Int("raw", normalizeStats.Total).
		Int("accepted", normalizeStats.Accepted).
		Int("rejected", normalizeStats.RejectedTotal()).
		Msg("Normalized batch")

	return &Snapshot{
		Batch:     batch,
		Normalize: normalizeStats,
		Views:     calculator.Calculate(records),
	}, nil
}

// Run computes the views for the batch at input and replaces them under the output root.
// Input failures return before anything is written. View write failures are joined into
// the returned error alongside the Report, and do not stop other views or the archive.
func (e *Engine) Run(ctx context.Context, input string) (*Report, error) {
	report := &Report{
		Input:           input,
		StartTime:       e.now(),
		RejectedRecords: map[ctdf.RejectionReason]int{},
		Rows:            map[string]int{},
	}

	snapshot, err := e.Compute(ctx, input)
	if err != nil {
		return report, err
	}

	report.Documents = len(snapshot.Batch.Documents)
	report.RawRecords = snapshot.Normalize.Total
	report.AcceptedRecords = snapshot.Normalize.Accepted
	for reason, count := range snapshot.Normalize.Rejected {
		report.RejectedRecords[reason] = count
	}

	tables := snapshot.Tables()
	for _, table := range tables {
		report.Rows[table.Name()] = table.Len()
	}

	outputStore, outputKey, err := objectstore.Open(ctx, e.Config.OutputRoot, e.Config.Storage)
	if err != nil {
		return report, fmt.Errorf("opening output root %s: %w", e.Config.OutputRoot, err)
	}

	m := &materializer.Materializer{
		Store: outputStore,
		Root:  outputKey,
	}
	results, viewErr := m.MaterializeAll(ctx, tables)
	report.Sinks = results

	if e.Config.Archive.Enabled {
		a := &archiver.Archiver{
			Store:  outputStore,
			Root:   outputKey,
			Prefix: e.Config.Archive.Prefix,
		}

		report.ArchiveLocation, report.ArchiveError = a.Perform(ctx, snapshot.Batch.Documents, report.StartTime)
		if report.ArchiveError != nil {
			log.Error().Err(report.ArchiveError).Str("location", report.ArchiveLocation).Msg("Failed to archive input documents")
		}
	}

	report.Duration = time.Since(report.StartTime)

	if e.Config.Metrics.Textfile != "" {
		metrics := NewMetrics()
		metrics.Observe(report)

		if err := metrics.WriteTextfile(e.Config.Metrics.Textfile); err != nil {
			log.Error().Err(err).Str("path", e.Config.Metrics.Textfile).Msg("Failed to write metrics textfile")
		}
	}

	report.Log(viewErr)

	return report, viewErr
}

func (r *Report) Failures() int {
	failures := 0
	for _, result := range r.Sinks {
		if result.Err != nil {
			failures += 1
		}
	}

	return failures
}

func (r *Report) Log(err error) {
	rejected := zerolog.Dict()
	for reason, count := range r.RejectedRecords {
		rejected = rejected.Int(string(reason), count)
	}

	rows := zerolog.Dict()
	for view, count := range r.Rows {
		rows = rows.Int(view, count)
	}

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}

	event.
		Str("input", r.Input).
		Int("documents", r.Documents).
		Int("raw", r.RawRecords).
		Int("accepted", r.AcceptedRecords).
		Dict("rejected", rejected).
		Dict("rows", rows).
		Int("sinks", len(r.Sinks)).
		Int("sink_failures", r.Failures()).
		Str("archive", r.ArchiveLocation).
		Dur("duration", r.Duration).
		Msg("Run complete")
}
