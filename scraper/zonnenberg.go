package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// zonnenbergSource scrapes Zonnenberg Makelaardij with a colly collector.
// The site serves its whole rental offer on a single page as a series of
// <article> cards.
type zonnenbergSource struct {
	logger  *utils.Logger
	baseURL string
}

func newZonnenberg(logger *utils.Logger) *zonnenbergSource {
	return &zonnenbergSource{logger: logger, baseURL: "https://zonnenbergmakelaardij.nl"}
}

func (s *zonnenbergSource) FetchListings(maxPages int) ([]models.ScrapedListing, error) {
	c := colly.NewCollector(
		colly.AllowedDomains("zonnenbergmakelaardij.nl"),
		colly.UserAgent(defaultUserAgent),
	)

	var listings []models.ScrapedListing
	seen := utils.NewStringSet()
	var fetchErr error

	c.OnHTML("article", func(e *colly.HTMLElement) {
		listing, ok := s.parseArticle(e)
		if !ok {
			return
		}
		// The offer page repeats cards in multiple sections; keep the
		// first occurrence per address and drop nav artifacts.
		if strings.EqualFold(listing.Address, "login") || !seen.Add(listing.Address) {
			return
		}
		listings = append(listings, listing)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("zonnenberg: fetch %s: %w", r.Request.URL, err)
	})

	if err := c.Visit(s.baseURL + "/woningaanbod/huur/"); err != nil {
		return nil, fmt.Errorf("zonnenberg: visit: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	return listings, nil
}

func (s *zonnenbergSource) parseArticle(e *colly.HTMLElement) (models.ScrapedListing, bool) {
	item := e.DOM

	// Property cards link to a detail page under woningaanbod/huur/;
	// anything without such a link is some other article on the page.
	var href string
	item.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		h, ok := a.Attr("href")
		if ok && strings.Contains(h, "woningaanbod/huur/") && !strings.Contains(h, "/page/") {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		if id, ok := item.Attr("id"); ok && strings.HasPrefix(id, "post-") {
			href = fmt.Sprintf("%s/woningaanbod/huur/%s/", s.baseURL, strings.TrimPrefix(id, "post-"))
		}
	}
	if href == "" || strings.HasSuffix(href, "/woningaanbod/huur/") {
		return models.ScrapedListing{}, false
	}

	address := CleanText(item.Find("h4").First().Text())
	if address == "N/A" {
		return models.ScrapedListing{}, false
	}

	return models.ScrapedListing{
		Address: address,
		Link:    absoluteURL(s.baseURL, href),
		City:    stripPostcode(CleanText(item.Find("span.d-block.place").Text())),
		Price:   ParseRentalPrice(item.Find("span.price").Text()),
		Area:    CleanText(item.Find("span.dimension").Text()),
	}, true
}
