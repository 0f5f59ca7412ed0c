package engine

import (
	"context"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/comexar/despacho/internal/model"
)

// ClassifyBatch classifies requests concurrently with a bounded worker pool.
// Results come back in input order. A canceled context stops the pool and
// returns the context error; individual classification failures never abort
// the batch because Classify degrades instead of failing.
func (e *Engine) ClassifyBatch(ctx context.Context, requests []Request, showProgress bool) ([]model.Classification, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(len(requests)), "classifying")
	}

	results := make([]model.Classification, len(requests))
	indexes := make(chan int)

	workers := e.workers
	if workers > len(requests) {
		workers = len(requests)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result, err := e.Classify(ctx, requests[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					continue
				}
				results[i] = result
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		}()
	}

	for i := range requests {
		select {
		case <-ctx.Done():
			close(indexes)
			wg.Wait()
			return nil, ctx.Err()
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	e.logger.Info("batch classification finished", "count", len(results))
	return results, nil
}
