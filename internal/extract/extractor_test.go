package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dataintel/company-scraper/internal/scraper"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestExtractor() *Extractor {
	return New(&fakeClock{now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)})
}

func TestExtract_EmptyContent(t *testing.T) {
	t.Parallel()

	e := newTestExtractor()
	data := e.Extract("", "https://acme.example", nil)

	require.Empty(t, data.CompanyName)
	require.Empty(t, data.Emails)
	require.Empty(t, data.PhoneNumbers)
	require.Empty(t, data.Addresses)
	require.Empty(t, data.SocialLinks)
	require.Empty(t, data.HRContacts)
	require.Empty(t, data.PackagesPricing)
	require.Empty(t, data.Services)
	require.Empty(t, data.Industry)
	require.Empty(t, data.CompanySize)
	require.Empty(t, data.FoundedYear)
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()

	content := "Acme Corp\nContact hr@acme.com or call (555) 123-4567\nFounded in 1998\nOur consulting services cover cloud migration"
	e := newTestExtractor()

	first := e.Extract(content, "https://acme.com", nil)
	second := e.Extract(content, "https://acme.com", nil)
	require.Equal(t, first, second)
}

func TestExtractCompanyName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		url     string
		meta    *scraper.PageMetadata
		want    string
	}{
		{
			name:    "site name wins",
			content: "anything",
			meta:    &scraper.PageMetadata{SiteName: "Acme Inc", Title: "Acme | Home"},
			want:    "Acme Inc",
		},
		{
			name:    "title before first pipe",
			content: "anything",
			meta:    &scraper.PageMetadata{Title: "Acme Corp | Leading Software"},
			want:    "Acme Corp",
		},
		{
			name:    "title before first dash",
			content: "anything",
			meta:    &scraper.PageMetadata{Title: "Acme Corp - About Us"},
			want:    "Acme Corp",
		},
		{
			name:    "first non-blank content line",
			content: "\n\n  Acme Robotics  \nWe build robots",
			want:    "Acme Robotics",
		},
		{
			name:    "first line truncated to 100 chars",
			content: strings.Repeat("x", 150),
			want:    strings.Repeat("x", 100),
		},
		{
			name:    "host label capitalized with www stripped",
			content: " ",
			url:     "https://www.acme.io/about",
			want:    "Acme",
		},
		{
			name:    "fixed fallback",
			content: " ",
			url:     "://not a url",
			want:    "Unknown Company",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, extractCompanyName(tc.content, tc.url, tc.meta))
		})
	}
}

func TestExtractEmails_FiltersAndCaps(t *testing.T) {
	t.Parallel()

	content := "Write to info@acme.com, or info@acme.com again, errors@sentry.io, test@example.com, site@static.wixpress.com, sales@acme.com"
	emails := extractEmails(content)
	require.Equal(t, []string{"info@acme.com", "sales@acme.com"}, emails)

	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "user%d@acme.com ", i)
	}
	require.Len(t, extractEmails(b.String()), maxEmails)
}

func TestExtractPhoneNumbers(t *testing.T) {
	t.Parallel()

	content := "Call (555) 123-4567 or +1 555 987 6543. Short: 123-4567. Intl: +442071838750"
	phones := extractPhoneNumbers(content)

	require.Contains(t, phones, "(555) 123-4567")
	require.Contains(t, phones, "+442071838750")
	for _, p := range phones {
		require.GreaterOrEqual(t, digitCount(p), minPhoneDigits, "phone %q", p)
	}

	// digit-only length below ten is dropped
	require.NotContains(t, phones, "123-4567")
}

func TestExtractAddresses(t *testing.T) {
	t.Parallel()

	content := "Visit us at 123 Main Street, Springfield, IL 62704 today.\n" +
		"Duplicate: 123 Main Street, Springfield, IL 62704.\n" +
		"India office: Tower Plaza, 42, Link Road, Mumbai -400001"
	addrs := extractAddresses(content)

	require.Contains(t, addrs, "123 Main Street, Springfield, IL 62704")
	require.LessOrEqual(t, len(addrs), maxAddresses)

	seen := map[string]struct{}{}
	for _, a := range addrs {
		_, dup := seen[a]
		require.False(t, dup, "duplicate address %q", a)
		seen[a] = struct{}{}
	}
}

func TestExtractSocialLinks(t *testing.T) {
	t.Parallel()

	content := "Follow https://linkedin.com/company/acme and https://www.linkedin.com/company/other plus twitter.com/acmehq and https://youtube.com/c/acmevideos"
	links := extractSocialLinks(content)

	require.Equal(t, "https://linkedin.com/company/acme", links["linkedin"])
	require.Equal(t, "twitter.com/acmehq", links["twitter"])
	require.Equal(t, "https://youtube.com/c/acmevideos", links["youtube"])
	require.NotContains(t, links, "facebook")
	require.NotContains(t, links, "instagram")
}

func TestExtractHRContacts(t *testing.T) {
	t.Parallel()

	t.Run("keyword in email address", func(t *testing.T) {
		t.Parallel()
		content := "Reach jobs@acme-hr.com for roles. Reach sales@acme.com for quotes."
		emails := extractEmails(content)
		contacts := extractHRContacts(content, emails)

		require.Len(t, contacts, 1)
		require.Equal(t, "jobs@acme-hr.com", contacts[0].Email)
		require.Equal(t, "HR Contact", contacts[0].Position)
	})

	t.Run("keyword line proximity", func(t *testing.T) {
		t.Parallel()
		content := "Careers at Acme\napply via apply@acme.com\n\nUnrelated paragraph far away " +
			strings.Repeat("filler ", 60) + "\nsales@acme.com"
		emails := extractEmails(content)
		contacts := extractHRContacts(content, emails)

		require.Len(t, contacts, 1)
		require.Equal(t, "apply@acme.com", contacts[0].Email)
		require.Equal(t, "HR/Recruitment", contacts[0].Position)
	})

	t.Run("no duplicate across passes", func(t *testing.T) {
		t.Parallel()
		content := "Recruitment team\nhr@acme.com"
		emails := extractEmails(content)
		contacts := extractHRContacts(content, emails)

		require.Len(t, contacts, 1)
		require.Equal(t, "hr@acme.com", contacts[0].Email)
	})
}

func TestExtractPackagesPricing(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"Starter plan $29.99",
		"10 projects",
		"Email support",
		"",
		"Premium tier $99",
		"Unlimited projects",
		"No price on this plan line",
	}, "\n")

	packages := extractPackagesPricing(content)
	require.Len(t, packages, 2)

	require.Equal(t, "Starter plan $29.99", packages[0].Name)
	require.Equal(t, "$29.99", packages[0].Price)
	require.Contains(t, packages[0].Features, "10 projects")
	require.Contains(t, packages[0].Features, "Email support")

	require.Equal(t, "$99", packages[1].Price)
}

func TestExtractPackagesPricing_CapsAtTen(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, "Plan %d costs $%d\n", i, 10+i)
	}
	require.Len(t, extractPackagesPricing(b.String()), maxPackages)
}

func TestExtractServices(t *testing.T) {
	t.Parallel()

	content := strings.Join([]string{
		"- Cloud consulting for enterprises",
		"• Web development done right",
		"* Web development done right",
		"support",
		strings.Repeat("long service line ", 20),
	}, "\n")

	services := extractServices(content)
	require.Contains(t, services, "cloud consulting for enterprises")
	require.Contains(t, services, "web development done right")
	// duplicates collapse, bare keywords under the length floor drop out
	require.Len(t, services, 2)
}

func TestExtractIndustry_PriorityOrder(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Technology", extractIndustry("We are a Technology company in Healthcare"))
	require.Equal(t, "Real estate", extractIndustry("Commercial REAL ESTATE experts"))
	require.Empty(t, extractIndustry("nothing relevant here"))
}

func TestExtractCompanySize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		want    string
	}{
		{"We have 50-100 employees worldwide", "50-100 employees"},
		{"A team of 12 builds everything", "team of 12"},
		{"Over 200+ employees strong", "200+ employees"},
		{"A proud startup from Berlin", "startup"},
		{"nothing to see", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, extractCompanySize(tc.content), "content %q", tc.content)
	}
}

func TestExtractFoundedYear(t *testing.T) {
	t.Parallel()

	currentYear := 2025
	tests := []struct {
		content string
		want    string
	}{
		{"Founded in 1998, we lead the market", "1998"},
		{"Established 2020", "2020"},
		{"Serving clients since 1985", "1985"},
		{"Founded in 1650, ancient indeed", ""},
		{"Founded in 2099, from the future", ""},
		{"no year at all", ""},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, extractFoundedYear(tc.content, currentYear), "content %q", tc.content)
	}
}

func TestTitleFromContent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Acme Corp", TitleFromContent("\n Acme Corp \nrest"))
	require.Equal(t, "Untitled", TitleFromContent(""))
	require.Equal(t, "Untitled", TitleFromContent(strings.Repeat("x", 250)))
}

func TestDescriptionFromContent(t *testing.T) {
	t.Parallel()

	desc := DescriptionFromContent("Acme builds industrial robots for factories. We ship worldwide to many markets. Third sentence.")
	require.Equal(t, "Acme builds industrial robots for factories. We ship worldwide to many markets", desc)

	long := DescriptionFromContent(strings.Repeat("a", 600) + ".")
	require.True(t, strings.HasSuffix(long, "..."))
	require.Len(t, long, 503)

	require.Empty(t, DescriptionFromContent("short. bits. only."))
}
