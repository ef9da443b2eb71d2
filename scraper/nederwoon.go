package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

var (
	// nederwoonIDRe pulls the numeric detail-page id out of a property URL
	// like "/huurwoning/utrecht/36852/oudegracht".
	nederwoonIDRe = regexp.MustCompile(`/(\d+)/`)
	areaM2Re      = regexp.MustCompile(`(\d+)\s*m²`)
	digitsRe      = regexp.MustCompile(`\d+`)
)

var nederwoonLocations = map[string]bool{
	"Utrecht":    true,
	"Amersfoort": true,
}

// nederwoonSource scrapes the Nederwoon search results for one city. The
// search page shows everything at once; there is no pagination.
type nederwoonSource struct {
	f        *fetcher
	logger   *utils.Logger
	baseURL  string
	location string
}

func newNederwoon(f *fetcher, logger *utils.Logger, location string) *nederwoonSource {
	if !nederwoonLocations[location] {
		logger.Warn("[nederwoon] unknown location %q, using Amersfoort", location)
		location = "Amersfoort"
	}
	return &nederwoonSource{
		f:        f,
		logger:   logger,
		baseURL:  "https://www.nederwoon.nl",
		location: location,
	}
}

func (s *nederwoonSource) siteName() string {
	return "nederwoon-" + strings.ToLower(s.location)
}

func (s *nederwoonSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	// No pagination on this site; force a single page regardless of maxPages.
	return collectAll(s, 1, s.logger)
}

func (s *nederwoonSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	if page > 1 {
		return nil, nil
	}

	doc, err := s.f.document(fmt.Sprintf("%s/search?city=%s", s.baseURL, s.location), nil)
	if err != nil {
		return nil, err
	}
	return s.parsePage(doc), nil
}

func (s *nederwoonSource) parsePage(doc *goquery.Document) []models.ScrapedListing {
	var listings []models.ScrapedListing

	doc.Find("div.location").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("h2.heading-sm a.see-page-button")
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		address := CleanText(link.Text())
		if address == "N/A" {
			return
		}

		propertyURL := absoluteURL(s.baseURL, href)

		// Several listings can share a street name here; suffix the
		// detail-page id so they survive dedup-by-address.
		if m := nederwoonIDRe.FindStringSubmatch(propertyURL); m != nil {
			address = fmt.Sprintf("%s (%s)", address, m[1])
		}

		listing := models.ScrapedListing{
			Address: address,
			Link:    propertyURL,
			City:    s.cleanCity(item.Find("p.color-medium.fixed-lh").Text()),
			Price:   ParseRentalPrice(item.Find("p.heading-md.text-regular.color-primary").Text()),
			Area:    "N/A",
		}

		item.Find("ul li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
			text := CleanText(li.Text())
			if !strings.Contains(strings.ToLower(text), "woonoppervlakte") {
				return true
			}
			if m := areaM2Re.FindStringSubmatch(text); m != nil {
				listing.Area = m[1] + " m²"
				return false
			}
			return true
		})

		listings = append(listings, listing)
	})

	return listings
}

// cleanCity strips the postal code and any stray house numbers from the
// location line, e.g. "3829DS Hooglanderveen" becomes "Hooglanderveen".
func (s *nederwoonSource) cleanCity(text string) string {
	text = stripPostcode(CleanText(text))
	text = strings.TrimSpace(digitsRe.ReplaceAllString(text, ""))
	if text == "" {
		return "N/A"
	}
	return text
}
