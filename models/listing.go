package models

import (
	"strconv"
	"strings"
	"time"
)

// Broker is a real-estate agency whose site we scrape. The ID is assigned
// by the store on first creation; Name is the natural key used for lookup.
type Broker struct {
	ID   int64
	Name string
	URL  string
}

// ScrapedListing is one rental advertisement as observed on a broker site,
// before it is attributed to a broker. Price is whole euros per month;
// 0 means the site did not expose a usable price.
type ScrapedListing struct {
	Address string
	Link    string
	City    string
	Price   int
	Area    string
}

// Listing is a rental advertisement attributed to exactly one broker.
// BrokerName is carried alongside BrokerID on freshly discovered listings
// so the notification mail can group them per agency.
type Listing struct {
	BrokerID   int64
	BrokerName string
	Address    string
	Link       string
	City       string
	Price      int
	Area       string
	AddedOn    time.Time
}

// Key is the normalized (address, link, price) triple that identifies a
// listing across scrape runs. Broker sites do not expose a stable external
// id, so this triple — not a database id — is the unit of identity for
// diffing. A consequence: a price change shows up as a brand-new key, never
// as an in-place update.
type Key struct {
	Address string
	Link    string
	Price   string
}

// KeyOf builds a Key from raw fields: case-folded, whitespace-trimmed,
// price rendered as a decimal string.
func KeyOf(address, link string, price int) Key {
	return Key{
		Address: strings.ToLower(strings.TrimSpace(address)),
		Link:    strings.ToLower(strings.TrimSpace(link)),
		Price:   strconv.Itoa(price),
	}
}

// Key returns the composite diff key for a scraped record.
func (s *ScrapedListing) Key() Key {
	return KeyOf(s.Address, s.Link, s.Price)
}

// Key returns the composite diff key for a persisted listing.
func (l *Listing) Key() Key {
	return KeyOf(l.Address, l.Link, l.Price)
}
