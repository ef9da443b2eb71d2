package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"huurhuis-scraper/config"
	"huurhuis-scraper/models"
	"huurhuis-scraper/scraper"
)

// fakeStore is an in-memory Store used across the service tests.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	brokers  map[string]*models.Broker
	listings map[int64][]models.Listing

	failCreateFor map[string]bool
	failDeleteFor map[string]bool
	failList      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		brokers:       make(map[string]*models.Broker),
		listings:      make(map[int64][]models.Listing),
		failCreateFor: make(map[string]bool),
		failDeleteFor: make(map[string]bool),
	}
}

func (s *fakeStore) FindBrokerByName(name string) (*models.Broker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.brokers[name]; ok {
		found := *b
		return &found, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateBroker(name, url string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.brokers[name] = &models.Broker{ID: s.nextID, Name: name, URL: url}
	return s.nextID, nil
}

func (s *fakeStore) ListListingsForBroker(brokerID int64) ([]models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errors.New("read failed")
	}
	out := make([]models.Listing, len(s.listings[brokerID]))
	copy(out, s.listings[brokerID])
	return out, nil
}

func (s *fakeStore) CreateListing(l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreateFor[l.Address] {
		return errors.New("insert failed")
	}
	s.listings[l.BrokerID] = append(s.listings[l.BrokerID], *l)
	return nil
}

func (s *fakeStore) DeleteListing(brokerID int64, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDeleteFor[address] {
		return errors.New("delete failed")
	}
	rows := s.listings[brokerID]
	kept := rows[:0]
	for _, row := range rows {
		if row.Address != address {
			kept = append(kept, row)
		}
	}
	s.listings[brokerID] = kept
	return nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) seedBroker(name string) int64 {
	id, _ := s.CreateBroker(name, "https://"+name+".example")
	return id
}

func (s *fakeStore) seedListing(brokerID int64, l models.Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.BrokerID = brokerID
	s.listings[brokerID] = append(s.listings[brokerID], l)
}

// fakeSource returns a fixed result after an optional delay.
type fakeSource struct {
	listings []models.ScrapedListing
	err      error
	delay    time.Duration
}

func (f *fakeSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.listings, f.err
}

// fakeResolver maps site-type strings to fakeSources.
type fakeResolver struct {
	sources map[string]*fakeSource
}

func (f *fakeResolver) Source(siteType string) (scraper.Source, error) {
	if src, ok := f.sources[siteType]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("%q: %w", siteType, scraper.ErrUnknownSiteType)
}

func newTestPipeline(store *fakeStore, resolver *fakeResolver) *Pipeline {
	logger := newTestLogger()
	return NewPipeline(store, resolver, NewReconciler(logger, false, 0), logger, 5, 0)
}

func TestPipelineAggregatesAllWorkers(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{sources: make(map[string]*fakeSource)}

	rng := rand.New(rand.NewSource(42))
	var agencies []config.Agency
	wantTotal := 0

	for i := 0; i < 8; i++ {
		name := fmt.Sprintf("broker-%d", i)
		count := i + 1
		wantTotal += count

		var listings []models.ScrapedListing
		for j := 0; j < count; j++ {
			listings = append(listings, models.ScrapedListing{
				Address: fmt.Sprintf("Straat %d-%d", i, j),
				Link:    fmt.Sprintf("/%d/%d", i, j),
				Price:   500 + j,
			})
		}

		resolver.sources[name] = &fakeSource{
			listings: listings,
			delay:    time.Duration(rng.Intn(20)) * time.Millisecond,
		}
		agencies = append(agencies, config.Agency{Name: name, Type: name, URL: "https://" + name + ".example"})
	}

	allNew, allRemoved := newTestPipeline(store, resolver).Run(agencies)

	if len(allNew) != wantTotal {
		t.Errorf("aggregate New count = %d; want %d", len(allNew), wantTotal)
	}
	if len(allRemoved) != 0 {
		t.Errorf("aggregate Removed count = %d; want 0", len(allRemoved))
	}

	for i := range allNew {
		if allNew[i].BrokerID == 0 || allNew[i].BrokerName == "" {
			t.Fatalf("listing %q missing broker identity", allNew[i].Address)
		}
		if allNew[i].AddedOn.IsZero() {
			t.Fatalf("listing %q missing discovery date", allNew[i].Address)
		}
	}
}

func TestPipelineFetchFailureDegradesToEmptyScrape(t *testing.T) {
	store := newFakeStore()
	store.seedBroker("good")
	badID := store.seedBroker("bad")
	store.seedListing(badID, models.Listing{Address: "Oude Gracht 1", Link: "/old", Price: 700})

	resolver := &fakeResolver{sources: map[string]*fakeSource{
		"good": {listings: []models.ScrapedListing{{Address: "Nieuwe Straat 2", Link: "/new", Price: 600}}},
		"bad":  {err: errors.New("connection refused")},
	}}

	allNew, allRemoved := newTestPipeline(store, resolver).Run([]config.Agency{
		{Name: "good", Type: "good"},
		{Name: "bad", Type: "bad"},
	})

	if len(allNew) != 1 || allNew[0].Address != "Nieuwe Straat 2" {
		t.Errorf("New = %v; want exactly the healthy broker's listing", allNew)
	}
	// A failed fetch degrades to an empty scrape, so the failed broker's
	// persisted rows come out as Removed.
	if len(allRemoved) != 1 || allRemoved[0].Address != "Oude Gracht 1" {
		t.Errorf("Removed = %v; want the failed broker's persisted row", allRemoved)
	}
}

func TestPipelineUnknownBrokerWithoutURLContributesNothing(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{sources: map[string]*fakeSource{
		"good": {listings: []models.ScrapedListing{{Address: "Nieuwe Straat 2", Link: "/new", Price: 600}}},
	}}

	allNew, allRemoved := newTestPipeline(store, resolver).Run([]config.Agency{
		{Name: "good", Type: "good", URL: "https://good.example"},
		{Name: "unconfigured", Type: "good", URL: ""},
	})

	if len(allNew) != 1 {
		t.Errorf("New count = %d; want 1 — misconfigured broker must contribute nothing", len(allNew))
	}
	if len(allRemoved) != 0 {
		t.Errorf("Removed count = %d; want 0", len(allRemoved))
	}
	if b, _ := store.FindBrokerByName("unconfigured"); b != nil {
		t.Errorf("misconfigured broker must not be created")
	}
}

func TestPipelineCreatesBrokerOnFirstRun(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{sources: map[string]*fakeSource{
		"fresh": {listings: []models.ScrapedListing{{Address: "Dorpsstraat 5", Link: "/2", Price: 600}}},
	}}

	allNew, _ := newTestPipeline(store, resolver).Run([]config.Agency{
		{Name: "fresh", Type: "fresh", URL: "https://fresh.example"},
	})

	broker, _ := store.FindBrokerByName("fresh")
	if broker == nil {
		t.Fatal("broker should have been created from the roster URL")
	}
	if len(allNew) != 1 || allNew[0].BrokerID != broker.ID {
		t.Errorf("New = %v; want one listing tagged with broker id %d", allNew, broker.ID)
	}
}

func TestPipelinePersistedReadFailureAbortsWorker(t *testing.T) {
	store := newFakeStore()
	store.seedBroker("broken")
	store.failList = true

	resolver := &fakeResolver{sources: map[string]*fakeSource{
		"broken": {listings: []models.ScrapedListing{{Address: "Dorpsstraat 5", Link: "/2", Price: 600}}},
	}}

	allNew, allRemoved := newTestPipeline(store, resolver).Run([]config.Agency{
		{Name: "broken", Type: "broken"},
	})

	if len(allNew) != 0 || len(allRemoved) != 0 {
		t.Errorf("worker with unreadable store state must contribute nothing, got %d new / %d removed",
			len(allNew), len(allRemoved))
	}
}
