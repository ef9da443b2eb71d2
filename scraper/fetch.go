package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// fetcher is the shared HTTP layer for the static-HTML sources: one client,
// one user agent, one retry policy.
type fetcher struct {
	client *http.Client
	logger *utils.Logger
	retry  *utils.RetryConfig
}

func newFetcher(logger *utils.Logger, maxRetries int) *fetcher {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &fetcher{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

// document GETs the URL and parses the response body as HTML. Cookies are
// optional; some sites gate their region filter behind them.
func (f *fetcher) document(pageURL string, cookies map[string]string) (*goquery.Document, error) {
	var doc *goquery.Document

	err := f.retry.Do("fetch "+pageURL, func() error {
		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		req.Header.Set("Accept-Language", "nl,en-US;q=0.7,en;q=0.3")
		for name, value := range cookies {
			req.AddCookie(&http.Cookie{Name: name, Value: value})
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %s", resp.Status)
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

var (
	spaceRe = regexp.MustCompile(`\s+`)
	// priceRe matches Dutch-formatted amounts: "1.250", "1.250,50", "950".
	priceRe = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{2})?|\d+`)
	// postcodeRe matches a Dutch postal code prefix like "3512 AG ".
	postcodeRe = regexp.MustCompile(`\d{4}\s*[A-Z]{2}\s*`)
)

// CleanText collapses all whitespace to single spaces and trims. Empty
// input becomes "N/A", matching what the sites themselves show for missing
// fields.
func CleanText(s string) string {
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if s == "" {
		return "N/A"
	}
	return s
}

// ParseRentalPrice extracts a whole-euro monthly rent from Dutch price text
// such as "€ 1.250,- per maand". Returns 0 when no amount can be extracted;
// 0 is the "unknown price" marker throughout the pipeline.
func ParseRentalPrice(text string) int {
	if text == "" || text == "N/A" {
		return 0
	}

	match := priceRe.FindString(text)
	if match == "" {
		return 0
	}

	if !strings.ContainsAny(match, ".,") {
		n, err := strconv.Atoi(match)
		if err != nil {
			return 0
		}
		return n
	}

	// Dutch format: dots group thousands, a trailing comma introduces cents.
	s := strings.ReplaceAll(match, ".", "")
	if i := strings.Index(s, ","); i >= 0 {
		decimals := s[i+1:]
		if len(decimals) <= 2 && !strings.Contains(decimals, ",") {
			s = s[:i] // drop cents, keep whole euros
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// stripPostcode removes a leading Dutch postal code from a city string.
func stripPostcode(s string) string {
	return strings.TrimSpace(postcodeRe.ReplaceAllString(s, ""))
}

// absoluteURL resolves href against base. Already-absolute hrefs pass
// through unchanged.
func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// pagedSource is implemented by sources whose site exposes numbered result
// pages.
type pagedSource interface {
	siteName() string
	listingsPage(page int) ([]models.ScrapedListing, error)
}

// collectAll drives pagination for a pagedSource: it walks pages until the
// site runs out, deduplicating by address across pages. A page consisting
// solely of already-seen addresses means the site wrapped around, so
// pagination stops there. Only a failure on the first page is reported as
// an error; later failures just end the walk with what was collected.
func collectAll(s pagedSource, maxPages int, logger *utils.Logger) ([]models.ScrapedListing, error) {
	var all []models.ScrapedListing
	seen := utils.NewStringSet()

	for page := 1; page <= maxPages; page++ {
		pageListings, err := s.listingsPage(page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%s: page 1: %w", s.siteName(), err)
			}
			logger.Warn("[%s] page %d failed: %v — keeping %d listings collected so far",
				s.siteName(), page, err, len(all))
			break
		}
		if len(pageListings) == 0 {
			break
		}

		duplicates := 0
		for _, l := range pageListings {
			if l.Address == "" || l.Address == "N/A" || !seen.Add(l.Address) {
				duplicates++
				continue
			}
			all = append(all, l)
		}

		if duplicates == len(pageListings) {
			break
		}
	}

	return all, nil
}
