// Package report persists scan reports and renders the aggregate page.
//
// Reports are written by one or more Sinks. The FileSink layout is the one
// the HTML page reads:
//
//	<dir>/
//	├── index.html
//	└── data/
//	    ├── 2024-05-06T13:08:09Z.json
//	    └── 2024-05-13T13:02:41Z.json
//
// MongoSink and HistoryStore keep the same reports in a database when
// configured.
package report

import (
	"context"

	"github.com/matzehuels/uiadoption/pkg/inventory"
)

// Sink persists a report.
type Sink interface {
	Write(ctx context.Context, r *inventory.Report) error
}

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, r *inventory.Report) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r *inventory.Report) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, r *inventory.Report) error { return f(ctx, r) }
