package scraper

import (
	"errors"
	"fmt"
	"strings"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// ErrUnknownSiteType is returned when no scraper is registered for a
// requested site type.
var ErrUnknownSiteType = errors.New("no scraper registered for site type")

// Source fetches the bounded sequence of listings currently advertised on
// one broker site. Pagination and dedup-by-address across pages are the
// source's own responsibility; callers see a finite, already-deduplicated
// snapshot.
type Source interface {
	FetchListings(maxPages int) ([]models.ScrapedListing, error)
}

// Registry creates site sources by type string. Each broker in the roster
// names the site type that selects its scraper.
type Registry struct {
	logger  *utils.Logger
	fetcher *fetcher
}

// NewRegistry creates a Registry whose sources share one HTTP client and
// retry policy.
func NewRegistry(logger *utils.Logger, maxRetries int) *Registry {
	return &Registry{
		logger:  logger,
		fetcher: newFetcher(logger, maxRetries),
	}
}

// Source returns a scraper for the requested site type.
func (r *Registry) Source(siteType string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(siteType)) {
	case "vdbunt":
		return newVdBunt(r.fetcher, r.logger), nil
	case "pararius":
		return newPararius(r.fetcher, r.logger), nil
	case "zonnenberg":
		return newZonnenberg(r.logger), nil
	case "ditters":
		return newDitters(r.fetcher, r.logger), nil
	case "vastgoednederland":
		return newVastgoedNederland(r.fetcher, r.logger), nil
	case "vbt":
		return newVBT(r.fetcher, r.logger), nil
	// The InterHouse site renders its result list with JavaScript and is
	// served per location.
	case "interhouse", "interhouse-utrecht":
		return newInterHouse(r.logger, "Utrecht"), nil
	case "interhouse-amersfoort":
		return newInterHouse(r.logger, "Amersfoort"), nil
	// Nederwoon is served per location too; the bare type keeps its
	// historical Amersfoort default.
	case "nederwoon", "nederwoon-amersfoort":
		return newNederwoon(r.fetcher, r.logger, "Amersfoort"), nil
	case "nederwoon-utrecht":
		return newNederwoon(r.fetcher, r.logger, "Utrecht"), nil
	default:
		return nil, fmt.Errorf("scraper: %w: %q", ErrUnknownSiteType, siteType)
	}
}
