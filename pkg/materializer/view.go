package materializer

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/parquet-go/parquet-go"
)

type Sink string

const (
	SinkParquet Sink = "parquet"
	SinkCSV     Sink = "csv"
)

var Sinks = []Sink{SinkParquet, SinkCSV}

func (s Sink) ContentType() string {
	switch s {
	case SinkParquet:
		return "application/vnd.apache.parquet"
	case SinkCSV:
		return "text/csv"
	default:
		return "application/octet-stream"
	}
}

func (s Sink) Extension() string {
	return "." + string(s)
}

// View is a named, ordered set of rows with a fixed schema.
type View interface {
	Name() string
	Len() int
	Encode(Sink, io.Writer) error
}

// Table is a View over a slice of tagged row structs. The csv and parquet struct tags
// define the column names of each sink.
type Table[T any] struct {
	name string
	rows []T
}

func NewTable[T any](name string, rows []T) *Table[T] {
	if rows == nil {
		rows = []T{}
	}

	return &Table[T]{
		name: name,
		rows: rows,
	}
}

func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) Len() int {
	return len(t.rows)
}

// Encode writes the whole table. Both encodings write the schema even with zero rows, the
// CSV as its header line.
func (t *Table[T]) Encode(sink Sink, writer io.Writer) error {
	switch sink {
	case SinkParquet:
		return parquet.Write(writer, t.rows)
	case SinkCSV:
		return gocsv.Marshal(t.rows, writer)
	default:
		return fmt.Errorf("unknown sink %s", sink)
	}
}
