package sfvalid

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// BatchSource feeds batches into jobs until it runs out or ctx is done.
// It must not close jobs.
type BatchSource func(ctx context.Context, jobs chan<- *EventBatch) error

// SliceSource feeds batches already in memory.
func SliceSource(batches []*EventBatch) BatchSource {
	return func(ctx context.Context, jobs chan<- *EventBatch) error {
		for _, b := range batches {
			select {
			case jobs <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
}

// RunBatches processes every batch of source on nWorkers workers and merges
// their results. A dataset without any requested trigger aborts the run;
// any other failing batch is logged and skipped.
func RunBatches(ctx context.Context, proc *Processor, source BatchSource, nWorkers int) (Result, error) {
	if nWorkers < 1 {
		nWorkers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan *EventBatch, nWorkers)

	g.Go(func() error {
		defer close(jobs)
		return source(ctx, jobs)
	})

	partials := make([]Result, nWorkers)
	for w := 0; w < nWorkers; w++ {
		id := w
		partials[id] = Result{}
		g.Go(func() error {
			return worker(ctx, id, proc, jobs, partials[id])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := Result{}
	for _, partial := range partials {
		if err := result.Merge(partial); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func worker(ctx context.Context, id int, proc *Processor, jobs <-chan *EventBatch, result Result) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-jobs:
			if !ok {
				return nil
			}
			logger.Info(fmt.Sprintf("Worker %d processing %s batch with %d events", id, batch.Dataset, batch.Len()), "runner")
			partial, err := processBatch(proc, batch)
			if err != nil {
				var missing *ErrTriggersMissing
				if errors.As(err, &missing) {
					return err
				}
				logger.Error(fmt.Sprintf("Worker %d skipping %s batch: %v", id, batch.Dataset, err))
				continue
			}
			if err := result.Merge(partial); err != nil {
				return err
			}
		}
	}
}

func processBatch(proc *Processor, batch *EventBatch) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic: %v", r)
		}
	}()
	return proc.Process(batch)
}
