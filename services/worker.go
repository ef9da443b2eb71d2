package services

import (
	"fmt"
	"time"

	"huurhuis-scraper/config"
	"huurhuis-scraper/models"
)

// processAgency is the per-broker unit of work: resolve or create the
// broker, fetch the site, reconcile against the persisted snapshot and tag
// the results with the broker's identity. It performs no writes.
func (p *Pipeline) processAgency(agency config.Agency) (newListings, removed []models.Listing, err error) {
	broker, err := p.store.FindBrokerByName(agency.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve broker: %w", err)
	}
	if broker == nil {
		if agency.URL == "" {
			return nil, nil, fmt.Errorf("%q: %w", agency.Name, ErrBrokerURLRequired)
		}
		id, err := p.store.CreateBroker(agency.Name, agency.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("create broker: %w", err)
		}
		p.logger.Info("[worker] created broker %q (id %d)", agency.Name, id)
		broker = &models.Broker{ID: id, Name: agency.Name, URL: agency.URL}
	}

	source, err := p.sources.Source(agency.Type)
	if err != nil {
		return nil, nil, err
	}

	scraped, err := source.FetchListings(p.maxPages)
	if err != nil {
		// Fail-open: a failed fetch degrades to an empty scrape, which
		// makes every persisted listing of this broker come out as
		// Removed. Warn loudly so those removals can be traced back here.
		p.logger.Warn("[worker] %s: fetch failed, continuing with empty scrape: %v",
			agency.Name, err)
		scraped = nil
	}
	p.logger.Info("[worker] %s: scraped %d listings (before filtering)",
		agency.Name, len(scraped))

	persisted, err := p.store.ListListingsForBroker(broker.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load persisted listings: %w", err)
	}

	result := p.reconciler.Reconcile(scraped, persisted)

	// Stamp broker identity on the new listings and deduplicate once more
	// on the composite key before they enter the shared aggregate.
	seen := make(map[models.Key]struct{}, len(result.New))
	today := time.Now()
	for _, sl := range result.New {
		key := sl.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		newListings = append(newListings, models.Listing{
			BrokerID:   broker.ID,
			BrokerName: broker.Name,
			Address:    sl.Address,
			Link:       sl.Link,
			City:       sl.City,
			Price:      sl.Price,
			Area:       sl.Area,
			AddedOn:    today,
		})
	}

	p.logger.Info("[worker] %s: %d new, %d existing, %d removed (%d duplicates, %d filtered)",
		agency.Name, len(newListings), len(result.Existing), len(result.Removed),
		result.Duplicates, result.FilteredOut)

	return newListings, result.Removed, nil
}
