package metadata

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/rohmanhakim/playlist-resolver/internal/metrics"
)

/*
Metadata Collected
- Fetch timings, status codes and attempts
- Content classification and content hashes
- Resolution results per depth
- Classified errors

Structured logging is preferred. Values are primitives: references, hashes,
status codes, durations and identifiers.

Metadata is write-only.
No component may read metadata to influence resolution decisions.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		source FetchSource,
		ref string,
		httpStatus int,
		duration time.Duration,
		sizeByte int,
		attempts int,
	)

	RecordSniff(
		callID string,
		ref string,
		classification string,
		sizeByte int,
		contentHash string,
		depth int,
	)

	RecordResolve(
		callID string,
		ref string,
		result string,
		depth int,
		duration time.Duration,
	)

	RecordArtifact(
		path string,
		attrs []Attribute,
	)
}

/*
Recorder writes metadata events to a structured logger and to the
process-wide prometheus collectors.
It must not:
- perform I/O decisions
- affect control flow
Events from one resolution are recorded in the order they happen; events of
concurrent resolutions interleave and are told apart by call_id.
*/
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	metrics.ErrorsTotal.WithLabelValues(packageName, cause.String()).Inc()

	args := []slog.Attr{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("details", details),
	}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	r.logger.LogAttrs(context.Background(), slog.LevelWarn, "error recorded", args...)
}

func (r *Recorder) RecordFetch(
	source FetchSource,
	ref string,
	httpStatus int,
	duration time.Duration,
	sizeByte int,
	attempts int,
) {
	metrics.FetchesTotal.WithLabelValues(string(source), strconv.Itoa(httpStatus)).Inc()
	metrics.FetchDuration.WithLabelValues(string(source)).Observe(duration.Seconds())

	r.logger.Debug("fetched",
		"source", string(source),
		"ref", ref,
		"http_status", httpStatus,
		"duration", duration,
		"size_byte", sizeByte,
		"attempts", attempts,
	)
}

func (r *Recorder) RecordSniff(
	callID string,
	ref string,
	classification string,
	sizeByte int,
	contentHash string,
	depth int,
) {
	metrics.SniffsTotal.WithLabelValues(classification).Inc()

	r.logger.Debug("classified",
		"call_id", callID,
		"ref", ref,
		"classification", classification,
		"size_byte", sizeByte,
		"content_hash", contentHash,
		"depth", depth,
	)
}

func (r *Recorder) RecordResolve(
	callID string,
	ref string,
	result string,
	depth int,
	duration time.Duration,
) {
	metrics.ResolutionsTotal.WithLabelValues(result, strconv.Itoa(depth)).Inc()
	if depth == 0 {
		metrics.ResolutionDuration.WithLabelValues(result).Observe(duration.Seconds())
		r.logger.Info("resolved", "call_id", callID, "ref", ref, "result", result, "duration", duration)
		return
	}
	r.logger.Debug("resolved nested", "call_id", callID, "ref", ref, "result", result, "depth", depth)
}

func (r *Recorder) RecordArtifact(path string, attrs []Attribute) {
	metrics.ArtifactsTotal.Inc()

	args := []slog.Attr{slog.String("path", path)}
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	r.logger.LogAttrs(context.Background(), slog.LevelInfo, "artifact written", args...)
}

// NoopSink implements MetadataSink and does nothing.
// Callers (or tests) decide whether to inject a Recorder or a NoopSink,
// which keeps metadata orthogonal to resolution.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	source FetchSource,
	ref string,
	httpStatus int,
	duration time.Duration,
	sizeByte int,
	attempts int,
) {
}

func (n *NoopSink) RecordSniff(
	callID string,
	ref string,
	classification string,
	sizeByte int,
	contentHash string,
	depth int,
) {
}

func (n *NoopSink) RecordResolve(
	callID string,
	ref string,
	result string,
	depth int,
	duration time.Duration,
) {
}

func (n *NoopSink) RecordArtifact(path string, attrs []Attribute) {
}
