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
	// transparantRe removes the "Transparant Meer informatie ... Sluiten"
	// tooltip block Pararius embeds inside its price element.
	transparantRe = regexp.MustCompile(`(?s)Transparant Meer informatie.*?Meer informatie Sluiten`)
	// cityNameRe captures the city name before any parenthesised district.
	cityNameRe = regexp.MustCompile(`^[^(]+`)
)

// parariusSource scrapes the Pararius search results for Leusden.
type parariusSource struct {
	f       *fetcher
	logger  *utils.Logger
	baseURL string
}

func newPararius(f *fetcher, logger *utils.Logger) *parariusSource {
	return &parariusSource{f: f, logger: logger, baseURL: "https://www.pararius.nl"}
}

func (s *parariusSource) siteName() string { return "pararius" }

func (s *parariusSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	return collectAll(s, maxPages, s.logger)
}

func (s *parariusSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	pageURL := s.baseURL + "/huurwoningen/leusden/"
	if page > 1 {
		pageURL = fmt.Sprintf("%s/huurwoningen/leusden/page-%d", s.baseURL, page)
	}

	doc, err := s.f.document(pageURL, nil)
	if err != nil {
		return nil, err
	}
	return s.parsePage(doc), nil
}

func (s *parariusSource) parsePage(doc *goquery.Document) []models.ScrapedListing {
	items := doc.Find("ul.search-list li.search-list__item--listing")
	if items.Length() == 0 {
		// Newer markup drops the list wrapper.
		items = doc.Find("section.listing-search-item")
	}

	var listings []models.ScrapedListing
	items.Each(func(_ int, item *goquery.Selection) {
		titleLink := item.Find(".listing-search-item__link--title")

		// Cards without a detail-page link are ad or teaser blocks; the
		// composite key must never carry an empty link.
		href, ok := titleLink.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		listing := models.ScrapedListing{
			Address: CleanText(titleLink.Text()),
			Link:    absoluteURL(s.baseURL, href),
			City:    s.cleanCity(item.Find(".listing-search-item__sub-title").Text()),
			Price:   ParseRentalPrice(s.cleanPrice(item.Find(".listing-search-item__price").Text())),
		}

		area := item.Find(".listing-search-item__features .surface")
		if area.Length() == 0 {
			area = item.Find(".illustrated-features__item--surface-area")
		}
		listing.Area = CleanText(area.Text())

		listings = append(listings, listing)
	})

	return listings
}

// cleanCity strips the postal code and any parenthesised district from the
// sub-title, e.g. "3831 JN Leusden (Centrum)" becomes "Leusden".
func (s *parariusSource) cleanCity(text string) string {
	text = stripPostcode(CleanText(text))
	if m := cityNameRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return text
}

func (s *parariusSource) cleanPrice(text string) string {
	return strings.TrimSpace(transparantRe.ReplaceAllString(CleanText(text), ""))
}
