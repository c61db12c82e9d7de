package resolver

import (
	"context"

	"github.com/rohmanhakim/playlist-resolver/internal/playlist"
	"golang.org/x/sync/errgroup"
)

// ResolveAsync runs Resolve on its own goroutine. The channel yields exactly
// one Outcome and is then closed. Events reach sink from that goroutine.
func (r *Resolver) ResolveAsync(
	ctx context.Context,
	ref string,
	base string,
	param ResolveParam,
	sink playlist.Sink,
) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		done <- r.Resolve(ctx, ref, base, param, sink)
	}()
	return done
}

// Job is one independent resolution of a batch.
type Job struct {
	Ref   string
	Base  string
	Param ResolveParam
	Sink  playlist.Sink
}

// ResolveMany resolves jobs concurrently, at most limit at a time (no limit
// when limit < 1). Each job delivers its events to its own sink in order;
// events of different jobs are not ordered relative to each other. Outcomes
// are returned in job order.
func (r *Resolver) ResolveMany(ctx context.Context, jobs []Job, limit int) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	g := new(errgroup.Group)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			outcomes[i] = r.Resolve(ctx, job.Ref, job.Base, job.Param, job.Sink)
			return nil
		})
	}
	// outcomes carry every failure; the group never sees one
	_ = g.Wait()

	return outcomes
}
