package services

import (
	"sync"

	"huurhuis-scraper/config"
	"huurhuis-scraper/models"
	"huurhuis-scraper/scraper"
	"huurhuis-scraper/storage"
	"huurhuis-scraper/utils"
)

// SourceResolver hands out a listing source for a site-type string.
// *scraper.Registry is the production implementation.
type SourceResolver interface {
	Source(siteType string) (scraper.Source, error)
}

// Pipeline coordinates one scrape-reconcile run across all brokers: one
// worker per broker on a bounded pool, per-worker failure isolation, and
// merge of all results into a single aggregate under one lock.
type Pipeline struct {
	store      storage.Store
	sources    SourceResolver
	reconciler *Reconciler
	logger     *utils.Logger

	maxPages    int
	concurrency int // 0 means one worker per broker
}

// NewPipeline wires a Pipeline. The store is only read from during Run;
// writes belong to the Applier, after Run has returned.
func NewPipeline(store storage.Store, sources SourceResolver, reconciler *Reconciler,
	logger *utils.Logger, maxPages, concurrency int) *Pipeline {
	return &Pipeline{
		store:       store,
		sources:     sources,
		reconciler:  reconciler,
		logger:      logger,
		maxPages:    maxPages,
		concurrency: concurrency,
	}
}

// Run processes every agency concurrently and returns the combined
// (allNew, allRemoved) aggregate. It returns only after every worker has
// completed or failed; that return is the barrier the Applier relies on.
// A failing worker is logged and simply contributes nothing.
func (p *Pipeline) Run(agencies []config.Agency) (allNew, allRemoved []models.Listing) {
	workers := p.concurrency
	if workers <= 0 {
		workers = len(agencies)
	}
	p.logger.Info("[pipeline] processing %d brokers with %d workers", len(agencies), workers)

	pool := utils.NewWorkerPool(workers, 0)
	var mu sync.Mutex

	for _, agency := range agencies {
		agency := agency
		pool.Submit(func() {
			defer func() {
				if rec := recover(); rec != nil {
					p.logger.Error("[pipeline] %s: worker panicked: %v", agency.Name, rec)
				}
			}()

			newListings, removed, err := p.processAgency(agency)
			if err != nil {
				p.logger.Error("[pipeline] %s: %v — broker contributes no results", agency.Name, err)
				return
			}

			// Hold the lock only for the merge, never for I/O.
			mu.Lock()
			allNew = append(allNew, newListings...)
			allRemoved = append(allRemoved, removed...)
			mu.Unlock()
		})
	}

	pool.Wait()

	p.logger.Info("[pipeline] run complete — %d new, %d removed across all brokers",
		len(allNew), len(allRemoved))
	return allNew, allRemoved
}
