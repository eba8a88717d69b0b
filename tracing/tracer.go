// Package tracing collects per-round records from transporters.
package tracing

import "github.com/profugus/mctransport/transport"

// A Tracer can collect round traces from a transporter.
type Tracer interface {
	StartRound(domain string, stats transport.RoundStats)
	EndRound(domain string, stats transport.RoundStats)
	EndTransport(domain string, summary transport.Summary)
}
