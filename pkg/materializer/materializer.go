package materializer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/positionstats/pkg/objectstore"
)

// SinkError reports a view that could not be written to one sink. Nothing was written to
// that location by the failed attempt.
type SinkError struct {
	View     string
	Sink     Sink
	Location string
	Err      error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("writing view %s to %s sink at %s: %v", e.View, e.Sink, e.Location, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

type Result struct {
	View     string
	Sink     Sink
	Location string

	Rows  int
	Bytes int

	Err error
}

type Materializer struct {
	Store objectstore.Store
	Root  string
}

// Key is the object key of a view in a sink, <root>/<sink>/<view>/<view>.<sink>
func Key(root string, view string, sink Sink) string {
	return objectstore.JoinKey(root, string(sink), view, view+sink.Extension())
}

// Materialize writes the view to every sink. Each sink is independent, a failure in one
// does not stop the other.
func (m *Materializer) Materialize(ctx context.Context, view View) ([]Result, error) {
	var results []Result
	var errs []error

	for _, sink := range Sinks {
		result := m.write(ctx, view, sink)
		results = append(results, result)

		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}

	return results, errors.Join(errs...)
}

// MaterializeAll writes the views concurrently. Results come back in view order then sink
// order, the error joins every SinkError encountered.
func (m *Materializer) MaterializeAll(ctx context.Context, views []View) ([]Result, error) {
	p := pool.NewWithResults[[]Result]()

	for _, view := range views {
		p.Go(func() []Result {
			results, _ := m.Materialize(ctx, view)
			return results
		})
	}

	byView := map[string][]Result{}
	for _, viewResults := range p.Wait() {
		if len(viewResults) > 0 {
			byView[viewResults[0].View] = viewResults
		}
	}

	var results []Result
	var errs []error
	for _, view := range views {
		for _, result := range byView[view.Name()] {
			results = append(results, result)

			if result.Err != nil {
				errs = append(errs, result.Err)
			}
		}
	}

	return results, errors.Join(errs...)
}

func (m *Materializer) write(ctx context.Context, view View, sink Sink) Result {
	key := Key(m.Root, view.Name(), sink)

	result := Result{
		View:     view.Name(),
		Sink:     sink,
		Location: m.Store.Location(key),
		Rows:     view.Len(),
	}

	var buffer bytes.Buffer
	if err := view.Encode(sink, &buffer); err != nil {
		result.Err = &SinkError{View: result.View, Sink: sink, Location: result.Location, Err: fmt.Errorf("encoding: %w", err)}
		log.Error().Err(err).Str("view", result.View).Str("sink", string(sink)).Msg("Failed to encode view")
		return result
	}

	if err := m.Store.Put(ctx, key, buffer.Bytes(), sink.ContentType()); err != nil {
		result.Err = &SinkError{View: result.View, Sink: sink, Location: result.Location, Err: err}
		log.Error().Err(err).Str("view", result.View).Str("sink", string(sink)).Str("location", result.Location).Msg("Failed to write view")
		return result
	}

	result.Bytes = buffer.Len()

	log.Info().
		Str("view", result.View).
		Str("sink", string(sink)).
		Str("location", result.Location).
		Int("rows", result.Rows).
		Int("bytes", result.Bytes).
		Msg("Materialized view")

	return result
}
