package workers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
)

type Worker interface {
	Name() string
	Start(ctx context.Context) error
}

// Group runs its workers concurrently until the context is cancelled or
// one of them fails; a failure stops the rest. Start returns every worker
// error, aggregated.
type Group []Worker

func (g Group) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu   sync.Mutex
		merr *multierror.Error
		wg   sync.WaitGroup
	)

	for _, w := range g {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				slog.Error("Worker failed", "name", w.Name(), "err", err)
				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
				cancel()
			}
		}(w)
	}

	wg.Wait()
	return merr.ErrorOrNil()
}
