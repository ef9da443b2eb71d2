package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// vastgoedNederlandSource scrapes the VastgoedNederland aggregated offer
// around Veenendaal.
type vastgoedNederlandSource struct {
	f       *fetcher
	logger  *utils.Logger
	baseURL string
}

func newVastgoedNederland(f *fetcher, logger *utils.Logger) *vastgoedNederlandSource {
	return &vastgoedNederlandSource{
		f:       f,
		logger:  logger,
		baseURL: "https://aanbod.vastgoednederland.nl",
	}
}

func (s *vastgoedNederlandSource) siteName() string { return "vastgoednederland" }

func (s *vastgoedNederlandSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	return collectAll(s, maxPages, s.logger)
}

func (s *vastgoedNederlandSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	pageURL := s.baseURL + "/huurwoningen?q=veenendaal&straal=15000"
	if page > 1 {
		pageURL = fmt.Sprintf("%s&p=%d", pageURL, page)
	}

	doc, err := s.f.document(pageURL, nil)
	if err != nil {
		return nil, err
	}

	var listings []models.ScrapedListing
	doc.Find("div.col-12.col-sm-6.col-lg-4").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a.propertyLink")
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		figure := link.Find("figure.property")
		if figure.Length() == 0 {
			return
		}

		// The first feature in the card footer is the surface area; the
		// icon class name leaks into the text and has to be scrubbed.
		area := CleanText(figure.Find("figcaption div.bottom ul li:first-child").Text())
		area = strings.TrimSpace(strings.ReplaceAll(area, "icon-meter", ""))
		if area == "" {
			area = "N/A"
		}

		listings = append(listings, models.ScrapedListing{
			Address: CleanText(figure.Find("figcaption span.street").Text()),
			Link:    absoluteURL(s.baseURL, href),
			City:    CleanText(figure.Find("figcaption span.city").Text()),
			Price:   ParseRentalPrice(figure.Find("figcaption span.price").Text()),
			Area:    area,
		})
	})

	return listings, nil
}
