package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// dittersSource scrapes the Ditters Makelaars rental offer.
type dittersSource struct {
	f       *fetcher
	logger  *utils.Logger
	baseURL string
}

func newDitters(f *fetcher, logger *utils.Logger) *dittersSource {
	return &dittersSource{f: f, logger: logger, baseURL: "https://www.ditters.nl"}
}

func (s *dittersSource) siteName() string { return "ditters" }

func (s *dittersSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	return collectAll(s, maxPages, s.logger)
}

func (s *dittersSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	pageURL := s.baseURL + "/woningaanbod/?filter%5Bcategory%5D=%2FHuur"
	if page > 1 {
		pageURL = fmt.Sprintf("%s&page=%d", pageURL, page)
	}

	doc, err := s.f.document(pageURL, nil)
	if err != nil {
		return nil, err
	}

	items := doc.Find("div.aanbod-list__inner.product-starters-template-row-link")
	if items.Length() == 0 {
		items = doc.Find(`div[class*="template-row-link"]`)
	}

	var listings []models.ScrapedListing
	items.Each(func(_ int, item *goquery.Selection) {
		listing := models.ScrapedListing{
			Address: CleanText(item.Find("h4.title").Text()),
			City:    CleanText(item.Find("div.UITextArea.element-content span").First().Text()),
			Price:   ParseRentalPrice(item.Find("div.UILabelPrice.element-content span").Text()),
			Area:    "N/A",
		}

		// The row link may sit on the container or on a nested anchor.
		href, ok := item.Attr("href")
		if !ok {
			href, ok = item.Find("a").First().Attr("href")
		}
		if !ok || listing.Address == "N/A" {
			return
		}
		listing.Link = absoluteURL(s.baseURL, href)

		item.Find("div.metadata-item span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := CleanText(span.Text())
			if strings.Contains(text, "m²") || strings.Contains(text, "m2") {
				listing.Area = text
				return false
			}
			return true
		})

		listings = append(listings, listing)
	})

	return listings, nil
}
