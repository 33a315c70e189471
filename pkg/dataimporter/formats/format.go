package formats

import (
	"io"

	"github.com/travigo/positionstats/pkg/ctdf"
)

type Format interface {
	ParseFile(io.Reader) error
	Records() []ctdf.RawPositionRecord
}
