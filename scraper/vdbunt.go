package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// vdbuntSource scrapes the Van de Bunt rental overview. The site shows its
// whole offer on a single page; there is no pagination.
type vdbuntSource struct {
	f       *fetcher
	logger  *utils.Logger
	baseURL string
}

func newVdBunt(f *fetcher, logger *utils.Logger) *vdbuntSource {
	return &vdbuntSource{f: f, logger: logger, baseURL: "https://www.vdbunt.nl"}
}

func (s *vdbuntSource) siteName() string { return "vdbunt" }

func (s *vdbuntSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	// No pagination on this site; force a single page regardless of maxPages.
	return collectAll(s, 1, s.logger)
}

func (s *vdbuntSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	if page > 1 {
		return nil, nil
	}

	doc, err := s.f.document(s.baseURL+"/aanbod/woningaanbod/huur/", nil)
	if err != nil {
		return nil, err
	}

	var listings []models.ScrapedListing
	doc.Find("li.al2woning.aanbodEntry").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find("a.aanbodEntryLink").Attr("href")
		if !ok {
			return
		}

		listings = append(listings, models.ScrapedListing{
			Address: CleanText(item.Find("h3.street-address").Text()),
			Link:    absoluteURL(s.baseURL, href),
			City:    CleanText(item.Find("span.locality").Text()),
			Price:   ParseRentalPrice(item.Find("span.kenmerk.huurprijs span.kenmerkValue").Text()),
			Area:    CleanText(item.Find("span.kenmerk.woonoppervlakte span.kenmerkValue").Text()),
		})
	})

	return listings, nil
}
