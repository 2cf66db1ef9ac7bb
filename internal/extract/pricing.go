package extract

import (
	"strings"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// extractPackagesPricing emits one package entry per line that carries both a
// package keyword and a currency amount: name is the line itself, price the
// first currency match, features the following non-blank short lines.
// Collection stops at 10 packages.
func extractPackagesPricing(content string) []scraper.PricePackage {
	lines := strings.Split(content, "\n")
	packages := make([]scraper.PricePackage, 0, maxPackages)

	for i, line := range lines {
		if len(packages) == maxPackages {
			break
		}
		if !containsPackageKeyword(strings.ToLower(line)) {
			continue
		}
		prices := priceRe.FindAllString(line, -1)
		if len(prices) == 0 {
			continue
		}

		var features []string
		for j := i + 1; j < len(lines) && j <= i+maxPackageFeatures; j++ {
			next := strings.TrimSpace(lines[j])
			if next == "" || len(next) >= 100 {
				continue
			}
			features = append(features, next)
			if len(features) == maxPackageFeatures {
				break
			}
		}

		packages = append(packages, scraper.PricePackage{
			Name:     truncate(strings.TrimSpace(line), 100),
			Price:    prices[0],
			Features: features,
		})
	}
	return packages
}

func containsPackageKeyword(line string) bool {
	for _, kw := range packageKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// extractServices keeps short lines mentioning a service keyword, with any
// leading bullet or dash marker stripped. Lines are matched and returned in
// lowercase, de-duplicated, capped at 20.
func extractServices(content string) []string {
	services := make([]string, 0, maxServices)
	seen := make(map[string]struct{})

	for _, line := range strings.Split(strings.ToLower(content), "\n") {
		if len(services) == maxServices {
			break
		}
		if len(line) >= 150 || !containsServiceKeyword(line) {
			continue
		}
		cleaned := leadingBulletRe.ReplaceAllString(strings.TrimSpace(line), "")
		if len(cleaned) <= 10 {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		services = append(services, cleaned)
	}
	return services
}

func containsServiceKeyword(line string) bool {
	for _, kw := range serviceKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
