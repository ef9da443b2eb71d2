package scraper

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// interhouseLocations maps roster location names to the site's location_id
// query parameter.
var interhouseLocations = map[string]string{
	"Utrecht":    "Utrecht_Algemeen",
	"Amersfoort": "Amersfoort_Algemeen",
}

// interhouseSource scrapes InterHouse, whose result list is rendered by
// JavaScript. A headless browser loads each page; the rendered DOM is then
// parsed like any other source.
type interhouseSource struct {
	logger     *utils.Logger
	baseURL    string
	location   string
	locationID string

	// renderCtx is valid only for the duration of one FetchListings call.
	renderCtx context.Context
}

func newInterHouse(logger *utils.Logger, location string) *interhouseSource {
	locationID, ok := interhouseLocations[location]
	if !ok {
		logger.Warn("[interhouse] unknown location %q, using Utrecht", location)
		location = "Utrecht"
		locationID = interhouseLocations[location]
	}
	return &interhouseSource{
		logger:     logger,
		baseURL:    "https://interhouse.nl",
		location:   location,
		locationID: locationID,
	}
}

func (s *interhouseSource) siteName() string {
	return "interhouse-" + strings.ToLower(s.location)
}

func (s *interhouseSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(defaultUserAgent),
	)
	if bin := findChromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelCtx()

	s.renderCtx = ctx
	defer func() { s.renderCtx = nil }()

	return collectAll(s, maxPages, s.logger)
}

func (s *interhouseSource) listingsPage(page int) ([]models.ScrapedListing, error) {
	pageURL := fmt.Sprintf("%s/huurwoningen/?location_id=%s&number_of_results=20&sort=date-desc&display=list",
		s.baseURL, s.locationID)
	if page > 1 {
		pageURL = fmt.Sprintf("%s&paging=%d", pageURL, page)
	}

	html, err := s.renderPage(pageURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered page: %w", err)
	}

	var listings []models.ScrapedListing
	doc.Find("div.c-result-item.building-result").Each(func(_ int, item *goquery.Selection) {
		listing := models.ScrapedListing{
			Address: CleanText(item.Find("span.c-result-item__title-address").Text()),
			City:    CleanText(item.Find("p.c-result-item__location-label").Text()),
			Price:   ParseRentalPrice(item.Find("p.c-result-item__price-label").Text()),
			Area:    "N/A",
		}
		// Results missing both address and city are placeholder cards.
		if listing.Address == "N/A" || listing.City == "N/A" {
			return
		}

		item.Find("div.c-result-item__data-table-item").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			if !strings.Contains(cell.Find("p.c-result-item__data-header").Text(), "Woonoppervlakte") {
				return true
			}
			listing.Area = CleanText(cell.Find("p.c-result-item__data-value").Text())
			return false
		})

		link := item.Find("div.c-result-item__button-wrapper a")
		if link.Length() == 0 {
			link = item.Find("a.c-button")
		}
		if link.Length() == 0 {
			link = item.Find("a")
		}
		if href, ok := link.First().Attr("href"); ok {
			listing.Link = absoluteURL(s.baseURL, href)
		}

		listings = append(listings, listing)
	})

	return listings, nil
}

// renderPage navigates the headless browser to the URL and returns the
// rendered HTML. A timeout while waiting for result cards is tolerated:
// the page may legitimately show "no results".
func (s *interhouseSource) renderPage(pageURL string) (string, error) {
	navCtx, cancelNav := context.WithTimeout(s.renderCtx, 45*time.Second)
	defer cancelNav()

	if err := chromedp.Run(navCtx, chromedp.Navigate(pageURL)); err != nil {
		return "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	waitCtx, cancelWait := context.WithTimeout(s.renderCtx, 10*time.Second)
	if err := chromedp.Run(waitCtx, chromedp.WaitReady("div.c-result-item", chromedp.ByQuery)); err != nil {
		s.logger.Debug("[%s] no result cards appeared within the wait window: %v", s.siteName(), err)
	}
	cancelWait()

	var html string
	if err := chromedp.Run(navCtx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("read rendered page: %w", err)
	}
	return html, nil
}

// findChromeBinary locates a usable Chrome/Chromium binary, preferring the
// CHROME_BIN override.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "google-chrome-stable"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
