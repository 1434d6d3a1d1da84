package executor

import (
	"context"
	"sync"

	"github.com/storelab-dev/checkout-runner/pkg/core"
	"github.com/storelab-dev/checkout-runner/pkg/report"
)

// workItem pairs a flow with its index in the requested order.
type workItem struct {
	flow  Flow
	index int
}

// runParallel executes flows over a fixed pool of workers pulling from
// a shared queue. Every flow still acquires its own fresh session; the
// pool only bounds how many browser sessions are alive at once. All
// workers share the report index writer, which serializes its own
// updates.
func (r *Runner) runParallel(ctx context.Context, flows []Flow, flowDetails []report.FlowDetail, indexWriter *report.IndexWriter) []core.FlowOutcome {
	workers := r.config.Parallelism
	if workers > len(flows) {
		workers = len(flows)
	}

	queue := make(chan workItem, len(flows))
	for i, f := range flows {
		queue <- workItem{flow: f, index: i}
	}
	close(queue)

	// Workers write to distinct indices, so the slice needs no lock;
	// the stop flag is shared and does.
	outcomes := make([]core.FlowOutcome, len(flows))
	var mu sync.Mutex
	stopped := false
	var wg sync.WaitGroup

	totalFlows := len(flows)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for item := range queue {
				mu.Lock()
				stop := stopped
				mu.Unlock()

				if ctx.Err() != nil {
					outcomes[item.index] = r.skipFlow(item.flow, &flowDetails[item.index], indexWriter, "run cancelled")
					continue
				}
				if stop {
					outcomes[item.index] = r.skipFlow(item.flow, &flowDetails[item.index], indexWriter, "run stopped")
					continue
				}

				outcome := r.executeFlow(ctx, item.flow, &flowDetails[item.index], indexWriter, item.index, totalFlows)
				outcomes[item.index] = outcome

				if r.config.StopOnFail && !outcome.Succeeded() {
					mu.Lock()
					stopped = true
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	return outcomes
}
