package resolver

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rohmanhakim/playlist-resolver/internal/fetcher"
	"github.com/rohmanhakim/playlist-resolver/internal/handler"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/catalog"
	"github.com/rohmanhakim/playlist-resolver/internal/handler/feed"
	"github.com/rohmanhakim/playlist-resolver/internal/metadata"
	"github.com/rohmanhakim/playlist-resolver/internal/metrics"
	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"github.com/rohmanhakim/playlist-resolver/internal/sniff"
	"github.com/rohmanhakim/playlist-resolver/pkg/failure"
	"github.com/rohmanhakim/playlist-resolver/pkg/hashutil"
	"github.com/rohmanhakim/playlist-resolver/pkg/urlutil"
)

/*
Responsibilities

- Route a reference by scheme before anything is fetched
- Bound recursion and honour the per-call policy in ResolveParam
- Classify content, cheaply by name first and from a fetched prefix when
  the name says too little
- Select a handler from the registry and hand it the content
- Resolve nested references depth-first through the same state machine
- Turn handler results into the final Result: ignore policy, fallback entry

A Resolver holds only read-only collaborators. Everything that changes
during a resolution lives in the call value threaded through resolve, so one
Resolver serves any number of concurrent calls.
*/

type Resolver struct {
	fetcher      fetcher.Fetcher
	metadataSink metadata.MetadataSink
	registry     *handler.Registry
	prefixBytes  int
}

type Option func(*Resolver)

// WithRegistry replaces the built-in handler set.
func WithRegistry(registry *handler.Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithPrefixBytes sets how much content is fetched for classification.
// Values below one are ignored.
func WithPrefixBytes(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.prefixBytes = n
		}
	}
}

func New(
	fetcher fetcher.Fetcher,
	metadataSink metadata.MetadataSink,
	opts ...Option,
) *Resolver {
	if metadataSink == nil {
		metadataSink = &metadata.NoopSink{}
	}
	r := &Resolver{
		fetcher:      fetcher,
		metadataSink: metadataSink,
		prefixBytes:  DefaultPrefixBytes,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = DefaultRegistry(nil)
	}
	return r
}

// call is the state of one top-level resolution.
type call struct {
	id    string
	param ResolveParam
	sink  *guardedSink
}

// Resolve resolves ref, a URI or an absolute local path, and delivers its
// events to sink before returning. A relative ref is resolved against base.
// Cancelling ctx ends the resolution with Cancelled and suppresses every
// later event.
func (r *Resolver) Resolve(
	ctx context.Context,
	ref string,
	base string,
	param ResolveParam,
	sink playlist.Sink,
) Outcome {
	metrics.ResolutionsInFlight.Inc()
	defer metrics.ResolutionsInFlight.Dec()

	c := &call{
		id:    uuid.NewString(),
		param: param,
		sink:  newGuardedSink(ctx, sink),
	}

	result, err := r.resolve(ctx, c, ref, base, 0)
	return Outcome{Ref: ref, Result: result, Err: err}
}

func (r *Resolver) resolve(
	ctx context.Context,
	c *call,
	ref string,
	base string,
	depth int,
) (playlist.Result, failure.ClassifiedError) {
	start := time.Now()

	dispatched, derr := r.dispatch(ctx, c, ref, base, depth)
	result, err := r.aggregate(ctx, c, ref, depth, dispatched, derr)

	if err != nil {
		r.recordResolveError(c, ref, depth, err)
	}
	r.metadataSink.RecordResolve(c.id, ref, result.String(), depth, time.Since(start))
	return result, err
}

// aggregate applies the policy that turns a handler result into the result of
// the reference.
func (r *Resolver) aggregate(
	ctx context.Context,
	c *call,
	ref string,
	depth int,
	result playlist.Result,
	err *ResolveError,
) (playlist.Result, failure.ClassifiedError) {
	switch result {
	case playlist.Success, playlist.Cancelled, playlist.Ignored:
		return result, errOrNil(err)
	}
	if ctx.Err() != nil {
		return playlist.Cancelled, cancelledError(ref)
	}
	if depth == 0 && c.param.Fallback() {
		c.sink.EntryParsed(ref, playlist.EntryFor(ref))
		return playlist.Success, nil
	}
	return result, errOrNil(err)
}

// dispatch runs the state machine for one reference up to the handler
// result. Ignore policy is applied here because only dispatch knows the
// classification.
func (r *Resolver) dispatch(
	ctx context.Context,
	c *call,
	ref string,
	base string,
	depth int,
) (playlist.Result, *ResolveError) {
	if ctx.Err() != nil {
		return playlist.Cancelled, cancelledError(ref)
	}

	if !urlutil.HasScheme(ref) && !urlutil.IsWindowsDrivePath(ref) && !urlutil.IsUNCPath(ref) && !isAbsolutePath(ref) {
		resolved, err := urlutil.ResolveReference(base, ref)
		if err != nil || !urlutil.HasScheme(resolved) {
			return playlist.Error, &ResolveError{
				Message: "reference is relative and no usable base was given",
				Cause:   ErrCauseInvalidReference,
				Ref:     ref,
			}
		}
		ref = resolved
	}

	route, target := routeScheme(ref)
	if route == routeStreaming {
		return playlist.Unhandled, nil
	}

	if depth > c.param.MaxDepth() {
		return playlist.Error, &ResolveError{
			Message: "nested deeper than " + strconv.Itoa(c.param.MaxDepth()),
			Cause:   ErrCauseDepthExceeded,
			Ref:     ref,
		}
	}
	if !c.param.Recurse() && depth > 0 {
		return playlist.Unhandled, nil
	}

	switch route {
	case routeSubscription:
		return r.resolveForced(ctx, c, target, base, depth, feed.Name)
	case routeCatalog:
		return r.resolveCatalog(ctx, c, target, base, depth)
	}

	return r.sniffAndDispatch(ctx, c, target, base, depth, nil)
}

// resolveForced skips classification when the handler is already known.
// Content the handler does not identify goes through normal sniffing.
func (r *Resolver) resolveForced(
	ctx context.Context,
	c *call,
	ref string,
	base string,
	depth int,
	handlerName string,
) (playlist.Result, *ResolveError) {
	h, ok := r.registry.ByName(handlerName)
	if !ok {
		return r.sniffAndDispatch(ctx, c, ref, base, depth, nil)
	}

	content, ferr := r.fetcher.Fetch(ctx, ref)
	if ferr != nil {
		return fetchFailed(ref, ferr)
	}
	if len(content) == 0 {
		r.recordSniff(c, ref, sniff.Empty, content, depth)
		return playlist.Success, nil
	}
	if h.Identify(content) {
		return r.invoke(ctx, c, h, ref, base, depth, content, sniff.FromContent(content))
	}
	return r.sniffAndDispatch(ctx, c, ref, base, depth, content)
}

// resolveCatalog fetches a catalog page and resolves the feed it advertises.
func (r *Resolver) resolveCatalog(
	ctx context.Context,
	c *call,
	ref string,
	base string,
	depth int,
) (playlist.Result, *ResolveError) {
	h, ok := r.registry.ByName(catalog.Name)
	if !ok {
		return r.sniffAndDispatch(ctx, c, ref, base, depth, nil)
	}

	page, ferr := r.fetcher.Fetch(ctx, ref)
	if ferr != nil {
		return fetchFailed(ref, ferr)
	}
	return r.invoke(ctx, c, h, ref, base, depth, page, sniff.HTML)
}

// sniffAndDispatch classifies ref and hands it to the matching handler.
// content is the full resource when the caller already fetched it.
func (r *Resolver) sniffAndDispatch(
	ctx context.Context,
	c *call,
	ref string,
	base string,
	depth int,
	content []byte,
) (playlist.Result, *ResolveError) {
	complete := content != nil
	classification := sniff.GuessFromName(ref)

	needsContent := complete ||
		c.param.Force() ||
		sniff.IsGeneric(classification) ||
		(classification == sniff.AudioMPEG && depth == 0)

	if content == nil && needsContent {
		prefix, ferr := r.fetcher.FetchPrefix(ctx, ref, r.prefixBytes)
		switch {
		case ferr == nil:
			content = prefix
			complete = len(prefix) < r.prefixBytes
		case fetcher.IsDirectory(ferr):
			classification = sniff.Directory
			needsContent = false
		default:
			return fetchFailed(ref, ferr)
		}
	}

	if needsContent {
		if len(content) == 0 {
			r.recordSniff(c, ref, sniff.Empty, content, depth)
			return playlist.Success, nil
		}
		classification = sniff.FromContent(content)
		r.recordSniff(c, ref, classification, content, depth)
	}

	if h, ok := r.registry.Unambiguous(classification); ok {
		if h.Unsafe() && c.param.DisableUnsafe() {
			return playlist.Ignored, &ResolveError{
				Message: h.Name() + " handler is unsafe",
				Cause:   ErrCauseUnsafeDisabled,
				Ref:     ref,
			}
		}
		if !complete && classification != sniff.Directory {
			full, ferr := r.fetcher.Fetch(ctx, ref)
			if ferr != nil {
				return fetchFailed(ref, ferr)
			}
			if len(full) == 0 {
				r.recordSniff(c, ref, sniff.Empty, full, depth)
				return playlist.Success, nil
			}
			content = full
		}
		result, err := r.invoke(ctx, c, h, ref, base, depth, content, classification)
		return ignorePolicy(classification, result, err)
	}

	for _, h := range r.registry.Candidates(classification) {
		if h.Unsafe() && c.param.DisableUnsafe() {
			continue
		}
		if !complete {
			full, ferr := r.fetcher.Fetch(ctx, ref)
			if ferr != nil {
				return fetchFailed(ref, ferr)
			}
			if len(full) == 0 {
				r.recordSniff(c, ref, sniff.Empty, full, depth)
				return playlist.Success, nil
			}
			content = full
			complete = true
		}
		if ctx.Err() != nil {
			return playlist.Cancelled, cancelledError(ref)
		}
		if h.Identify(content) {
			result, err := r.invoke(ctx, c, h, ref, base, depth, content, classification)
			return ignorePolicy(classification, result, err)
		}
	}

	if sniff.IsIgnored(classification) {
		return playlist.Ignored, nil
	}
	return playlist.Unhandled, nil
}

// ignorePolicy downgrades a failed handler result to Ignored when the
// classification is a known non-playlist type.
func ignorePolicy(
	classification sniff.Classification,
	result playlist.Result,
	err *ResolveError,
) (playlist.Result, *ResolveError) {
	if (result == playlist.Unhandled || result == playlist.Error) && sniff.IsIgnored(classification) {
		return playlist.Ignored, nil
	}
	return result, err
}

func (r *Resolver) invoke(
	ctx context.Context,
	c *call,
	h handler.Handler,
	ref string,
	base string,
	depth int,
	content []byte,
	classification sniff.Classification,
) (playlist.Result, *ResolveError) {
	if ctx.Err() != nil {
		return playlist.Cancelled, cancelledError(ref)
	}

	req := handler.Request{
		Ref:            ref,
		Content:        content,
		Classification: classification,
		Sink:           c.sink,
		Nested: handler.NestedFunc(func(ctx context.Context, nestedRef string, nestedBase string) playlist.Result {
			result, _ := r.resolve(ctx, c, nestedRef, nestedBase, depth+1)
			return result
		}),
		Fetcher: r.fetcher,
	}
	if depth == 0 {
		req.Base = base
	}

	result, herr := h.Handle(ctx, req)
	if herr != nil {
		if result == playlist.Success {
			// partial output was emitted; the failure is informational
			r.recordHandlerError(c, h, ref, depth, herr)
			return result, nil
		}
		return result, &ResolveError{
			Message: herr.Error(),
			Cause:   ErrCauseHandlerFailed,
			Ref:     ref,
			Err:     herr,
		}
	}
	if result == playlist.Cancelled {
		return result, cancelledError(ref)
	}
	return result, nil
}

func fetchFailed(ref string, err failure.ClassifiedError) (playlist.Result, *ResolveError) {
	if fetcher.IsCancelled(err) {
		return playlist.Cancelled, cancelledError(ref)
	}
	return playlist.Error, &ResolveError{
		Message: err.Error(),
		Cause:   ErrCauseFetchFailed,
		Ref:     ref,
		Err:     err,
	}
}

func cancelledError(ref string) *ResolveError {
	return &ResolveError{
		Message: context.Canceled.Error(),
		Cause:   ErrCauseCancelled,
		Ref:     ref,
	}
}

// errOrNil keeps a nil *ResolveError from becoming a non-nil interface.
func errOrNil(err *ResolveError) failure.ClassifiedError {
	if err == nil {
		return nil
	}
	return err
}

func isAbsolutePath(ref string) bool {
	return len(ref) > 0 && ref[0] == '/'
}

func (r *Resolver) recordSniff(c *call, ref string, classification sniff.Classification, content []byte, depth int) {
	hash, err := hashutil.HashBytes(content, hashutil.HashAlgoBLAKE3)
	if err != nil {
		hash = ""
	}
	r.metadataSink.RecordSniff(c.id, ref, classification.String(), len(content), hash, depth)
}

func (r *Resolver) recordResolveError(c *call, ref string, depth int, err failure.ClassifiedError) {
	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) || resolveErr.Cause == ErrCauseCancelled {
		return
	}

	packageName, action := "resolver", "Resolver.resolve"
	var handlerErr *handler.HandlerError
	if errors.As(resolveErr.Err, &handlerErr) {
		packageName, action = "handler", handlerErr.Handler+".Handle"
	}

	r.metadataSink.RecordError(
		time.Now(),
		packageName,
		action,
		mapResolveErrorToMetadataCause(resolveErr),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCallID, c.id),
			metadata.NewAttr(metadata.AttrRef, ref),
			metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(depth)),
		},
	)
}

func (r *Resolver) recordHandlerError(c *call, h handler.Handler, ref string, depth int, err failure.ClassifiedError) {
	r.metadataSink.RecordError(
		time.Now(),
		"handler",
		h.Name()+".Handle",
		mapHandlerFailure(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrCallID, c.id),
			metadata.NewAttr(metadata.AttrRef, ref),
			metadata.NewAttr(metadata.AttrDepth, strconv.Itoa(depth)),
			metadata.NewAttr(metadata.AttrHandler, h.Name()),
		},
	)
}
