// Package extract implements the deterministic, pattern-based pipeline that
// turns raw page text into structured company facts. The engine is pure and
// total: it performs no I/O, holds no shared state, and never fails — absent
// signals simply leave the corresponding fields empty.
package extract

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/dataintel/company-scraper/internal/scraper"
)

const fallbackCompanyName = "Unknown Company"

// Extractor runs the sub-extractor pipeline. The clock bounds the accepted
// founded-year range, which keeps outputs deterministic under a fake clock.
type Extractor struct {
	clock scraper.Clock
}

// New constructs an Extractor.
func New(clock scraper.Clock) *Extractor {
	return &Extractor{clock: clock}
}

// Extract converts raw page content into the structured entity set. Empty
// content yields an all-empty result without inspecting the URL. Sub-
// extractors run independently and never short-circuit each other.
func (e *Extractor) Extract(content, pageURL string, meta *scraper.PageMetadata) scraper.CompanyData {
	data := scraper.CompanyData{
		Emails:          []string{},
		PhoneNumbers:    []string{},
		Addresses:       []string{},
		SocialLinks:     map[string]string{},
		HRContacts:      []scraper.HRContact{},
		PackagesPricing: []scraper.PricePackage{},
		Services:        []string{},
	}
	if content == "" {
		return data
	}

	data.CompanyName = extractCompanyName(content, pageURL, meta)
	data.Emails = extractEmails(content)
	data.PhoneNumbers = extractPhoneNumbers(content)
	data.Addresses = extractAddresses(content)
	data.SocialLinks = extractSocialLinks(content)
	data.HRContacts = extractHRContacts(content, data.Emails)
	data.PackagesPricing = extractPackagesPricing(content)
	data.Services = extractServices(content)
	data.Industry = extractIndustry(content)
	data.CompanySize = extractCompanySize(content)
	data.FoundedYear = extractFoundedYear(content, e.clock.Now().Year())

	return data
}

// extractCompanyName resolves the company name from the strongest available
// signal: site-name metadata, the title up to the first separator, the first
// content line, the URL host label, then a fixed fallback.
func extractCompanyName(content, pageURL string, meta *scraper.PageMetadata) string {
	if meta != nil && meta.SiteName != "" {
		return meta.SiteName
	}
	if meta != nil && meta.Title != "" {
		title := meta.Title
		if i := strings.Index(title, "|"); i >= 0 {
			title = title[:i]
		}
		if i := strings.Index(title, "-"); i >= 0 {
			title = title[:i]
		}
		return strings.TrimSpace(title)
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return truncate(line, 100)
		}
	}

	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		host := strings.TrimPrefix(u.Hostname(), "www.")
		label, _, _ := strings.Cut(host, ".")
		if label != "" {
			return capitalize(label)
		}
	}
	return fallbackCompanyName
}

func extractEmails(content string) []string {
	matches := emailRe.FindAllString(content, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, email := range matches {
		if len(out) == maxEmails {
			break
		}
		_, domain, ok := strings.Cut(email, "@")
		if !ok || isNoiseDomain(domain) {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}

func isNoiseDomain(domain string) bool {
	for _, noise := range noiseDomains {
		if strings.Contains(domain, noise) {
			return true
		}
	}
	return false
}

func extractPhoneNumbers(content string) []string {
	matches := phoneRe.FindAllString(content, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, phone := range matches {
		if len(out) == maxPhoneNumbers {
			break
		}
		if digitCount(phone) < minPhoneDigits {
			continue
		}
		if _, dup := seen[phone]; dup {
			continue
		}
		seen[phone] = struct{}{}
		out = append(out, phone)
	}
	return out
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func extractAddresses(content string) []string {
	out := make([]string, 0, maxAddresses)
	seen := make(map[string]struct{})
	for _, re := range addressRes {
		for _, addr := range re.FindAllString(content, -1) {
			if len(out) == maxAddresses {
				return out
			}
			if _, dup := seen[addr]; dup {
				continue
			}
			seen[addr] = struct{}{}
			out = append(out, addr)
		}
	}
	return out
}

func extractSocialLinks(content string) map[string]string {
	links := map[string]string{}
	for _, p := range socialPatterns {
		if m := p.re.FindString(content); m != "" {
			links[p.platform] = m
		}
	}
	return links
}

func extractIndustry(content string) string {
	lower := strings.ToLower(content)
	for _, industry := range industries {
		if strings.Contains(lower, industry) {
			return capitalize(industry)
		}
	}
	return ""
}

func extractCompanySize(content string) string {
	for _, re := range companySizeRes {
		if m := re.FindString(content); m != "" {
			return m
		}
	}
	return ""
}

func extractFoundedYear(content string, currentYear int) string {
	m := foundedYearRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year < minFoundedYear || year > currentYear {
		return ""
	}
	return m[1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
