package thumb

import (
	"context"

	"github.com/franz/print-shelf/internal/filetype"
	"github.com/sourcegraph/conc/pool"
)

// Job is the outcome of one background render
type Job struct {
	Model string
	Image string
	Err   error
}

// Prefetch renders the thumbnails of every model in paths on a bounded pool
// of workers. One Job is delivered per model; the channel is closed when all
// work is done or ctx is cancelled.
func (r *Resolver) Prefetch(ctx context.Context, paths []string, workers int) <-chan Job {
	if workers < 1 {
		workers = 1
	}

	var models []string
	for _, p := range paths {
		if filetype.IsModel(p) {
			models = append(models, p)
		}
	}

	jobs := make(chan Job, len(models))

	go func() {
		defer close(jobs)

		p := pool.New().WithMaxGoroutines(workers)
		for _, model := range models {
			if ctx.Err() != nil {
				break
			}
			model := model
			p.Go(func() {
				image, err := r.Thumbnail(ctx, model)
				jobs <- Job{Model: model, Image: image, Err: err}
			})
		}
		p.Wait()
	}()

	return jobs
}
