package extract

import "regexp"

// Output caps. Each sub-extractor enforces its own bound so downstream
// storage and rendering see predictable sizes regardless of page shape.
const (
	maxEmails          = 20
	maxPhoneNumbers    = 10
	maxAddresses       = 5
	maxHRContacts      = 10
	maxPackages        = 10
	maxPackageFeatures = 5
	maxServices        = 20

	minFoundedYear = 1800
	minPhoneDigits = 10
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}|\+?\d{10,15}`)

	// US street-suffix form with state and ZIP, then a city/street-number/PIN
	// form. Matches from both families are concatenated.
	addressRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Circle|Cir|Way)[,\s]+[A-Za-z\s]+[,\s]+[A-Z]{2}\s+\d{5}`),
		regexp.MustCompile(`(?i)[A-Z][a-z]+\s+[A-Z][a-z]+[,\s]+\d+[,\s]+[A-Za-z\s]+[,\s]+[A-Za-z\s]+[-\s]\d{6}`),
	}

	priceRe = regexp.MustCompile(`\$\d+(?:,\d{3})*(?:\.\d{2})?|₹\d+(?:,\d{2,3})*(?:\.\d{2})?|€\d+(?:,\d{3})*(?:\.\d{2})?|£\d+(?:,\d{3})*(?:\.\d{2})?`)

	foundedYearRe = regexp.MustCompile(`(?i)(?:founded|established|since)\s+(?:in\s+)?(\d{4})`)

	leadingBulletRe = regexp.MustCompile(`^[•\-*]\s*`)
)

// socialPatterns is evaluated in order; the first match per platform wins
// and absent platforms are left out of the result map.
var socialPatterns = []struct {
	platform string
	re       *regexp.Regexp
}{
	{"linkedin", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/(?:company|in)/[a-zA-Z0-9-]+`)},
	{"twitter", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?(?:twitter|x)\.com/[a-zA-Z0-9_]+`)},
	{"facebook", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?facebook\.com/[a-zA-Z0-9.]+`)},
	{"instagram", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?instagram\.com/[a-zA-Z0-9._]+`)},
	{"youtube", regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?youtube\.com/(?:c|channel|user)/[a-zA-Z0-9_-]+`)},
}

// companySizeRes is tried in order; the raw matched text of the first hit is
// returned verbatim.
var companySizeRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+[\s-]+\d+)\s+employees`),
	regexp.MustCompile(`(?i)team\s+of\s+(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\+\s+employees`),
	regexp.MustCompile(`(?i)small business|startup`),
	regexp.MustCompile(`(?i)enterprise|large company`),
	regexp.MustCompile(`(?i)mid-size|medium business`),
}

// noiseDomains are email domains that show up in page source without being
// real contact addresses (error trackers, hosting platforms, placeholders).
var noiseDomains = []string{"example.com", "sentry.io", "wixpress.com"}

var hrKeywords = []string{"hr", "human resource", "recruiter", "recruitment", "talent", "hiring", "careers"}

var packageKeywords = []string{"plan", "package", "pricing", "tier", "subscription", "basic", "premium", "enterprise", "starter", "professional"}

var serviceKeywords = []string{
	"service", "solution", "product", "offering", "consulting", "development",
	"design", "marketing", "support", "training", "implementation", "integration",
}

// industries is priority-ordered; the first case-insensitive substring hit
// decides the industry.
var industries = []string{
	"technology", "software", "healthcare", "finance", "education", "retail",
	"manufacturing", "consulting", "real estate", "hospitality", "logistics",
	"entertainment", "automotive", "energy", "telecommunications", "construction",
}
