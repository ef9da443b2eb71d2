package services

import (
	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// Reconciler compares a freshly scraped snapshot against the persisted
// snapshot of one broker and partitions it into New / Existing / Removed on
// the composite (address, link, price) key. It holds no state between calls
// and is safe to share across workers.
type Reconciler struct {
	logger *utils.Logger

	// When filterEnabled, records priced above maxPrice are dropped from
	// both inputs before the partition. Price 0 (unknown) always passes.
	// A filtered-out record is neither New nor Removed — even if it is
	// already persisted: storage reflects the filtered view of the site,
	// not the site itself.
	filterEnabled bool
	maxPrice      int
}

// NewReconciler creates a Reconciler with the given price-ceiling settings.
func NewReconciler(logger *utils.Logger, filterEnabled bool, maxPrice int) *Reconciler {
	return &Reconciler{logger: logger, filterEnabled: filterEnabled, maxPrice: maxPrice}
}

// Result holds one broker's partition. New and Existing carry scraped
// records; Removed carries the persisted rows that vanished from the scrape.
type Result struct {
	New      []models.ScrapedListing
	Existing []models.ScrapedListing
	Removed  []models.Listing

	// Duplicates counts scraped records collapsed as intra-run repeats
	// (first occurrence wins).
	Duplicates int
	// FilteredOut counts scraped records dropped by the price ceiling.
	FilteredOut int
}

// Reconcile partitions scraped against persisted. New, Existing and Removed
// are disjoint; New ∪ Existing covers every deduplicated scraped key and
// Existing ∪ Removed covers every persisted key.
func (r *Reconciler) Reconcile(scraped []models.ScrapedListing, persisted []models.Listing) Result {
	var res Result
	scraped, res.FilteredOut = r.applyPriceFilter(scraped)

	persistedByKey := make(map[models.Key]models.Listing, len(persisted))
	for _, p := range persisted {
		if r.aboveCeiling(p.Price) {
			r.logger.Debug("[reconciler] persisted row above price ceiling, left untouched: %s", p.Address)
			continue
		}
		persistedByKey[p.Key()] = p
	}

	scrapedKeys := make(map[models.Key]struct{}, len(scraped))
	for _, sl := range scraped {
		key := sl.Key()

		if _, dup := scrapedKeys[key]; dup {
			res.Duplicates++
			r.logger.Debug("[reconciler] duplicate scraped record skipped: %s", sl.Address)
			continue
		}
		scrapedKeys[key] = struct{}{}

		if _, ok := persistedByKey[key]; ok {
			res.Existing = append(res.Existing, sl)
		} else {
			res.New = append(res.New, sl)
		}
	}

	for key, p := range persistedByKey {
		if _, ok := scrapedKeys[key]; !ok {
			res.Removed = append(res.Removed, p)
		}
	}

	return res
}

func (r *Reconciler) applyPriceFilter(scraped []models.ScrapedListing) ([]models.ScrapedListing, int) {
	if !r.filterEnabled || r.maxPrice <= 0 {
		return scraped, 0
	}

	kept := make([]models.ScrapedListing, 0, len(scraped))
	dropped := 0
	for _, sl := range scraped {
		if r.aboveCeiling(sl.Price) {
			dropped++
			r.logger.Debug("[reconciler] filtered out by price (€%d > €%d): %s",
				sl.Price, r.maxPrice, sl.Address)
			continue
		}
		kept = append(kept, sl)
	}
	return kept, dropped
}

func (r *Reconciler) aboveCeiling(price int) bool {
	return r.filterEnabled && r.maxPrice > 0 && price != 0 && price > r.maxPrice
}
