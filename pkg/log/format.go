package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
)

// Format is the encoding of log records. It implements the pflag.Value
// interface so it can be set from flags and config alike.
type Format uint

const (
	// FmtLogfmt writes key=value records.
	FmtLogfmt Format = iota
	// FmtJSON writes one JSON object per record.
	FmtJSON
)

var formatNames = map[Format]string{
	FmtLogfmt: "logfmt",
	FmtJSON:   "json",
}

func (f *Format) String() string {
	name, ok := formatNames[*f]
	if !ok {
		panic("log: unsupported format")
	}
	return name
}

// Set parses s case-insensitively.
func (f *Format) Set(s string) error {
	for format, name := range formatNames {
		if strings.EqualFold(s, name) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("log: invalid log format: '%s'", s)
}

func (f *Format) Type() string {
	return "[logfmt,json]"
}

// encoder returns a go-kit logger writing records in format f to w.
func (f Format) encoder(w io.Writer) (log.Logger, error) {
	sw := log.NewSyncWriter(w)
	switch f {
	case FmtLogfmt:
		return log.NewLogfmtLogger(sw), nil
	case FmtJSON:
		return log.NewJSONLogger(sw), nil
	default:
		return nil, fmt.Errorf("log: unsupported log format: %d", uint(f))
	}
}
