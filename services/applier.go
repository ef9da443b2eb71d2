package services

import (
	"huurhuis-scraper/models"
	"huurhuis-scraper/storage"
	"huurhuis-scraper/utils"
)

// Applier writes the aggregated diff back to the store. It must run only
// after the pipeline barrier and never concurrently with itself: the
// sequential write phase, not database transactions, is what prevents
// duplicate-insert races.
type Applier struct {
	store  storage.Store
	logger *utils.Logger
}

// NewApplier creates an Applier over the given store.
func NewApplier(store storage.Store, logger *utils.Logger) *Applier {
	return &Applier{store: store, logger: logger}
}

// Apply inserts the new listings and deletes the removed ones. Every item
// failure is isolated: logged, skipped, never fatal to the batch. The
// returned counts are what was actually written, which can be lower than
// the input sizes.
func (a *Applier) Apply(newListings, removed []models.Listing) (appliedNew, appliedRemoved int) {
	a.logger.Info("[applier] applying updates — %d new, %d removed",
		len(newListings), len(removed))

	added := make(map[models.Key]struct{}, len(newListings))

	for i := range newListings {
		l := &newListings[i]

		if l.BrokerID == 0 {
			a.logger.Error("[applier] %q: %v — skipping", l.Address, ErrMissingBrokerID)
			continue
		}

		key := l.Key()
		if _, dup := added[key]; dup {
			a.logger.Debug("[applier] %q already handled in this batch — skipping", l.Address)
			continue
		}

		// Re-check against current storage: the worker's snapshot is
		// stale by now relative to anything else writing the store.
		persisted, err := a.store.ListListingsForBroker(l.BrokerID)
		if err != nil {
			a.logger.Error("[applier] %q: re-check failed: %v — skipping", l.Address, err)
			continue
		}
		if containsKey(persisted, key) {
			a.logger.Debug("[applier] %q already stored — skipping", l.Address)
			added[key] = struct{}{}
			continue
		}

		if err := a.store.CreateListing(l); err != nil {
			a.logger.Error("[applier] insert %q: %v", l.Address, err)
			continue
		}
		added[key] = struct{}{}
		appliedNew++
	}

	for i := range removed {
		l := &removed[i]
		if err := a.store.DeleteListing(l.BrokerID, l.Address); err != nil {
			a.logger.Error("[applier] delete %q: %v", l.Address, err)
			continue
		}
		appliedRemoved++
	}

	a.logger.Info("[applier] applied %d/%d new and %d/%d removals",
		appliedNew, len(newListings), appliedRemoved, len(removed))
	return appliedNew, appliedRemoved
}

func containsKey(listings []models.Listing, key models.Key) bool {
	for i := range listings {
		if listings[i].Key() == key {
			return true
		}
	}
	return false
}
