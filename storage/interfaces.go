package storage

import "huurhuis-scraper/models"

// Store is the persistence capability the pipeline depends on. The parallel
// scrape phase only reads through it; all writes happen in the sequential
// apply phase.
type Store interface {
	// FindBrokerByName returns the broker with the given display name,
	// or nil when no such broker exists.
	FindBrokerByName(name string) (*models.Broker, error)
	// CreateBroker inserts a new broker and returns its assigned id.
	CreateBroker(name, url string) (int64, error)
	ListListingsForBroker(brokerID int64) ([]models.Listing, error)
	CreateListing(l *models.Listing) error
	// DeleteListing removes the listing keyed by (brokerID, address).
	// Deleting an already-absent row is not an error.
	DeleteListing(brokerID int64, address string) error
	Close() error
}
