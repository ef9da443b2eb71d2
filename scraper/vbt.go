package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// vbtSource scrapes VBT Verhuurmakelaars. The site stores its region filter
// in a cookie, so every request carries one pinning the search to
// Veenendaal and surroundings.
type vbtSource struct {
	f       *fetcher
	logger  *utils.Logger
	baseURL string
	cookies map[string]string
}

func newVBT(f *fetcher, logger *utils.Logger) *vbtSource {
	return &vbtSource{
		f:       f,
		logger:  logger,
		baseURL: "https://vbtverhuurmakelaars.nl",
		cookies: map[string]string{
			"language":       "nl",
			"cookie-consent": `{"functional":true,"analytics":true,"marketing":true}`,
			"filter_properties": `{"city":"Veenendaal","radius":15,"address":"",` +
				`"priceRental":{"min":0,"max":0},"availablefrom":"","surface":"",` +
				`"rooms":0,"typeCategory":""}`,
		},
	}
}

func (s *vbtSource) siteName() string { return "vbt" }

func (s *vbtSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	return collectAll(s, maxPages, s.logger)
}

func (s *vbtSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	pageURL := s.baseURL + "/woningen"
	if page > 1 {
		pageURL = fmt.Sprintf("%s/woningen/%d", s.baseURL, page)
	}

	doc, err := s.f.document(pageURL, s.cookies)
	if err != nil {
		return nil, err
	}

	var listings []models.ScrapedListing
	doc.Find("a.property").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Attr("href")
		if !ok || href == "" {
			return
		}

		listing := models.ScrapedListing{
			Address: CleanText(item.Find("span.normal").Text()),
			Link:    absoluteURL(s.baseURL, href),
			City:    CleanText(item.Find("div.items > div:first-child").Text()),
			Price:   ParseRentalPrice(item.Find("div.price").Text()),
			Area:    "N/A",
		}

		item.Find("table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			if !strings.Contains(row.Find("td:first-child").Text(), "Woonoppervlakte") {
				return true
			}
			area := CleanText(row.Find("td:nth-child(2)").Text())
			area = strings.ReplaceAll(area, "m2", "m²")
			if area != "N/A" && !strings.Contains(area, "m²") {
				area += " m²"
			}
			listing.Area = area
			return false
		})

		listings = append(listings, listing)
	})

	return listings, nil
}
