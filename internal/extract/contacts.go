package extract

import (
	"strings"

	"github.com/dataintel/company-scraper/internal/scraper"
)

// hrProximityChars bounds how far (in characters of the full content) an
// email's first occurrence may sit from an HR keyword line and still be
// attributed to it.
const hrProximityChars = 200

// extractHRContacts classifies previously extracted emails as HR contacts.
// Pass one keeps emails whose own text carries an HR keyword. Pass two walks
// the content line by line and attributes any email whose first occurrence
// lies within ±200 characters of an HR keyword line. An email is recorded at
// most once across both passes, first-seen order, capped at 10.
func extractHRContacts(content string, emails []string) []scraper.HRContact {
	contacts := make([]scraper.HRContact, 0, maxHRContacts)
	recorded := make(map[string]struct{})

	for _, email := range emails {
		if containsHRKeyword(strings.ToLower(email)) {
			contacts = append(contacts, scraper.HRContact{Email: email, Position: "HR Contact"})
			recorded[email] = struct{}{}
		}
	}

	lower := strings.ToLower(content)
	for _, line := range strings.Split(lower, "\n") {
		if !containsHRKeyword(line) {
			continue
		}
		lineOffset := strings.Index(lower, line)
		for _, email := range emails {
			emailOffset := strings.Index(lower, strings.ToLower(email))
			if emailOffset <= lineOffset-hrProximityChars || emailOffset >= lineOffset+hrProximityChars {
				continue
			}
			if _, dup := recorded[email]; !dup {
				contacts = append(contacts, scraper.HRContact{Email: email, Position: "HR/Recruitment"})
				recorded[email] = struct{}{}
			}
			break
		}
	}

	if len(contacts) > maxHRContacts {
		contacts = contacts[:maxHRContacts]
	}
	return contacts
}

func containsHRKeyword(s string) bool {
	for _, kw := range hrKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
