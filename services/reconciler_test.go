package services

import (
	"testing"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger(false) }

func scraped(address, link string, price int) models.ScrapedListing {
	return models.ScrapedListing{Address: address, Link: link, City: "Leusden", Price: price, Area: "100 m²"}
}

func persisted(address, link string, price int) models.Listing {
	return models.Listing{BrokerID: 1, Address: address, Link: link, City: "Leusden", Price: price, Area: "100 m²"}
}

func TestReconcileNewAndUnchanged(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{
			scraped("Kerkstraat 1", "/1", 500),
			scraped("Dorpsstraat 5", "/2", 600),
		},
		[]models.Listing{persisted("Kerkstraat 1", "/1", 500)},
	)

	if len(res.New) != 1 || res.New[0].Address != "Dorpsstraat 5" {
		t.Errorf("New = %v; want exactly Dorpsstraat 5", res.New)
	}
	if len(res.Existing) != 1 || res.Existing[0].Address != "Kerkstraat 1" {
		t.Errorf("Existing = %v; want exactly Kerkstraat 1", res.Existing)
	}
	if len(res.Removed) != 0 {
		t.Errorf("Removed = %v; want empty", res.Removed)
	}
}

func TestReconcileVanishedListingIsRemoved(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{scraped("Kerkstraat 1", "/1", 500)},
		[]models.Listing{
			persisted("Kerkstraat 1", "/1", 500),
			persisted("Dorpsstraat 5", "/2", 600),
		},
	)

	if len(res.New) != 0 {
		t.Errorf("New = %v; want empty", res.New)
	}
	if len(res.Removed) != 1 || res.Removed[0].Address != "Dorpsstraat 5" {
		t.Errorf("Removed = %v; want exactly Dorpsstraat 5", res.Removed)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{
			scraped("Kerkstraat 1", "/1", 500),
			scraped("Dorpsstraat 5", "/2", 600),
		},
		[]models.Listing{
			persisted("Kerkstraat 1", "/1", 500),
			persisted("Dorpsstraat 5", "/2", 600),
		},
	)

	if len(res.New) != 0 || len(res.Removed) != 0 {
		t.Errorf("unchanged snapshot: New = %v, Removed = %v; want both empty", res.New, res.Removed)
	}
	if len(res.Existing) != 2 {
		t.Errorf("Existing count = %d; want 2", len(res.Existing))
	}
}

func TestReconcilePartitionIsDisjointAndCovering(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	scrapedSet := []models.ScrapedListing{
		scraped("A 1", "/a", 500),
		scraped("B 2", "/b", 600),
		scraped("C 3", "/c", 700),
	}
	persistedSet := []models.Listing{
		persisted("B 2", "/b", 600),
		persisted("C 3", "/c", 700),
		persisted("D 4", "/d", 800),
	}

	res := r.Reconcile(scrapedSet, persistedSet)

	seen := make(map[models.Key]string)
	record := func(key models.Key, class string) {
		if prev, dup := seen[key]; dup {
			t.Errorf("key %v classified as both %s and %s", key, prev, class)
		}
		seen[key] = class
	}
	for i := range res.New {
		record(res.New[i].Key(), "New")
	}
	for i := range res.Existing {
		record(res.Existing[i].Key(), "Existing")
	}
	for i := range res.Removed {
		record(res.Removed[i].Key(), "Removed")
	}

	for i := range scrapedSet {
		if class := seen[scrapedSet[i].Key()]; class != "New" && class != "Existing" {
			t.Errorf("scraped %s classified as %q; want New or Existing", scrapedSet[i].Address, class)
		}
	}
	for i := range persistedSet {
		if class := seen[persistedSet[i].Key()]; class != "Existing" && class != "Removed" {
			t.Errorf("persisted %s classified as %q; want Existing or Removed", persistedSet[i].Address, class)
		}
	}
}

func TestReconcileCollapsesDuplicateKeys(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{
			scraped("Kerkstraat 1", "/1", 500),
			scraped("Kerkstraat 1", "/1", 500),
		},
		nil,
	)

	if len(res.New) != 1 {
		t.Errorf("New count = %d; want 1 after deduplication", len(res.New))
	}
	if res.Duplicates != 1 {
		t.Errorf("Duplicates = %d; want 1", res.Duplicates)
	}
}

func TestReconcileKeyNormalization(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{scraped("  KERKSTRAAT 1 ", "/1", 500)},
		[]models.Listing{persisted("kerkstraat 1", "/1", 500)},
	)

	if len(res.New) != 0 || len(res.Removed) != 0 {
		t.Errorf("case/whitespace variants should match: New = %v, Removed = %v", res.New, res.Removed)
	}
}

func TestReconcilePriceChangeIsNewPlusRemoved(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 0)

	res := r.Reconcile(
		[]models.ScrapedListing{scraped("Kerkstraat 1", "/1", 550)},
		[]models.Listing{persisted("Kerkstraat 1", "/1", 500)},
	)

	if len(res.New) != 1 || len(res.Removed) != 1 {
		t.Errorf("price change: New = %v, Removed = %v; want one of each", res.New, res.Removed)
	}
}

func TestReconcilePriceCeilingFiltersBothSides(t *testing.T) {
	r := NewReconciler(newTestLogger(), true, 550)

	// The 600-euro record is above the ceiling on both sides: it must be
	// invisible to the diff, not reported as Removed.
	res := r.Reconcile(
		[]models.ScrapedListing{
			scraped("Kerkstraat 1", "/1", 500),
			scraped("Dorpsstraat 5", "/2", 600),
		},
		[]models.Listing{
			persisted("Kerkstraat 1", "/1", 500),
			persisted("Dorpsstraat 5", "/2", 600),
		},
	)

	if len(res.New) != 0 {
		t.Errorf("New = %v; want empty", res.New)
	}
	if len(res.Removed) != 0 {
		t.Errorf("Removed = %v; want empty — filtered listings are invisible to the diff", res.Removed)
	}
	if res.FilteredOut != 1 {
		t.Errorf("FilteredOut = %d; want 1", res.FilteredOut)
	}
}

func TestReconcilePriceCeilingBoundary(t *testing.T) {
	r := NewReconciler(newTestLogger(), true, 550)

	res := r.Reconcile(
		[]models.ScrapedListing{
			scraped("At ceiling", "/1", 550),
			scraped("Above ceiling", "/2", 551),
			scraped("Unknown price", "/3", 0),
		},
		nil,
	)

	if len(res.New) != 2 {
		t.Fatalf("New count = %d; want 2 (at-ceiling and unknown-price)", len(res.New))
	}
	for i := range res.New {
		if res.New[i].Address == "Above ceiling" {
			t.Errorf("record above the ceiling must not be classified")
		}
	}
}

func TestReconcileFilterDisabledKeepsEverything(t *testing.T) {
	r := NewReconciler(newTestLogger(), false, 550)

	res := r.Reconcile(
		[]models.ScrapedListing{scraped("Dorpsstraat 5", "/2", 600)},
		nil,
	)

	if len(res.New) != 1 || res.FilteredOut != 0 {
		t.Errorf("filter disabled: New = %v, FilteredOut = %d; want 1 and 0", res.New, res.FilteredOut)
	}
}
