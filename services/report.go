package services

import (
	"fmt"
	"sort"
	"strings"

	"huurhuis-scraper/models"
	"huurhuis-scraper/utils"
)

// RunReport summarizes one scrape-reconcile-apply run.
type RunReport struct {
	TotalNew       int
	TotalRemoved   int
	AppliedNew     int
	AppliedRemoved int
	NewByBroker    map[string]int
	NewByCity      map[string]int
	CheapestNew    *models.Listing
}

// ReportService builds and prints the end-of-run summary.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

func (s *ReportService) Generate(newListings, removed []models.Listing,
	appliedNew, appliedRemoved int) *RunReport {
	report := &RunReport{
		TotalNew:       len(newListings),
		TotalRemoved:   len(removed),
		AppliedNew:     appliedNew,
		AppliedRemoved: appliedRemoved,
		NewByBroker:    make(map[string]int),
		NewByCity:      make(map[string]int),
	}

	for i := range newListings {
		l := &newListings[i]
		if l.BrokerName != "" {
			report.NewByBroker[l.BrokerName]++
		}
		if l.City != "" && l.City != "N/A" {
			report.NewByCity[l.City]++
		}
		if l.Price > 0 && (report.CheapestNew == nil || l.Price < report.CheapestNew.Price) {
			report.CheapestNew = l
		}
	}

	return report
}

func (s *ReportService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  🏠 HUURHUIS RUN SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  New listings found   : \033[1m%d\033[0m (applied: %d)\n", r.TotalNew, r.AppliedNew)
	fmt.Printf("  Listings removed     : \033[1m%d\033[0m (applied: %d)\n", r.TotalRemoved, r.AppliedRemoved)
	fmt.Println()

	fmt.Printf("\033[1;33m  New Listings by Agency\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(r.NewByBroker)
	fmt.Println()

	fmt.Printf("\033[1;33m  New Listings by City\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(r.NewByCity)
	fmt.Println()

	if r.CheapestNew != nil {
		fmt.Printf("\033[1;33m  Cheapest New Listing\033[0m\n")
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  %s (%s)\n", r.CheapestNew.Address, r.CheapestNew.City)
		fmt.Printf("  Rent : \033[1;32m€%d/month\033[0m — %s\n", r.CheapestNew.Price, r.CheapestNew.Area)
		fmt.Println()
	}
}

func printCounts(counts map[string]int) {
	if len(counts) == 0 {
		fmt.Printf("  None\n")
		return
	}

	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	for _, e := range entries {
		fmt.Printf("  %-40s \033[1m%d\033[0m\n", truncate(e.name, 38), e.count)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
