package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/daveenci-ai/leadchat-backend/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-\s().]{7,}[0-9]`)
	namePattern  = regexp.MustCompile(`(?i)\bmy name is\s+([a-zA-Z][a-zA-Z'\-]*(?:\s+[a-zA-Z][a-zA-Z'\-]*)?)`)
	orgPattern   = regexp.MustCompile(`(?i)\b(?:i work (?:at|for)|my company is|we are called)\s+([a-zA-Z0-9][a-zA-Z0-9&.'\- ]{1,40})`)
)

// serviceVocabulary maps the canonical service name to the phrases that
// count as a mention. Matching is case-insensitive.
var serviceVocabulary = map[string][]string{
	"marketing automation": {"marketing automation", "automate my marketing", "automated marketing"},
	"crm integration":      {"crm integration", "crm", "hubspot", "salesforce"},
	"lead generation":      {"lead generation", "lead gen", "generate leads", "more leads"},
	"ai chatbots":          {"ai chatbot", "chatbot", "chat bot", "virtual assistant"},
	"web design":           {"web design", "website redesign", "new website", "landing page"},
	"seo":                  {"seo", "search engine optimization", "search ranking"},
	"email marketing":      {"email marketing", "email campaign", "newsletter"},
	"analytics":            {"analytics", "reporting dashboard", "attribution"},
	"content marketing":    {"content marketing", "blog content", "content strategy"},
}

// painVocabulary maps the normalized pain-point label to its trigger
// patterns.
var painVocabulary = map[string]*regexp.Regexp{
	"manual work":       regexp.MustCompile(`(?i)\bmanual(?:ly)?\b|\bby hand\b|\bspreadsheets?\b`),
	"too slow":          regexp.MustCompile(`(?i)\btoo slow\b|\btakes? (?:too |so )?long\b`),
	"losing leads":      regexp.MustCompile(`(?i)\blos(?:e|ing) leads\b|\bleads? (?:slip|fall)`),
	"no time":           regexp.MustCompile(`(?i)\bno time\b|\bnot enough time\b|\bnot enough hours\b`),
	"low conversion":    regexp.MustCompile(`(?i)\blow conversion\b|\bconversions? (?:is|are) (?:too )?low\b|\bnot converting\b`),
	"overwhelmed":       regexp.MustCompile(`(?i)\boverwhelm(?:ed|ing)?\b|\bdrowning in\b`),
	"missed follow-ups": regexp.MustCompile(`(?i)\bmiss(?:ed|ing) follow[\s-]?ups?\b|\bforget to follow up\b`),
	"high cost":         regexp.MustCompile(`(?i)\btoo expensive\b|\bcosts? too much\b|\bover budget\b`),
}

// Fixed iteration order keeps insertion order stable when one message
// mentions several services or pain points.
var (
	serviceOrder = sortedKeys(serviceVocabulary)
	painOrder    = sortedKeys(painVocabulary)
)

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extraction lists what a single pass over one message added to the
// context. Contact conflicts are reported here, never raised.
type Extraction struct {
	NewServices   []string
	NewPainPoints []string
	EmailFound    bool // email was newly recorded this turn
	Conflicts     []string
}

// Extractor scans user turns for contact details, service mentions and
// pain-point phrases. It is rule-based and deterministic: re-running it
// on the same message against the same context adds nothing.
type Extractor struct{}

// NewExtractor creates an extractor with the built-in vocabularies.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract merges facts found in content into the context. Facts are
// never removed; an already-populated contact field is never silently
// overwritten with a different value.
func (e *Extractor) Extract(c *models.LLMContext, content string) Extraction {
	var ext Extraction
	lower := strings.ToLower(content)

	e.extractContact(c, content, &ext)

	for _, canonical := range serviceOrder {
		if c.HasService(canonical) {
			continue
		}
		for _, phrase := range serviceVocabulary[canonical] {
			if containsPhrase(lower, phrase) {
				c.ServicesDiscussed = append(c.ServicesDiscussed, canonical)
				ext.NewServices = append(ext.NewServices, canonical)
				break
			}
		}
	}

	for _, label := range painOrder {
		if c.HasPainPoint(label) {
			continue
		}
		if painVocabulary[label].MatchString(content) {
			c.PainPoints = append(c.PainPoints, label)
			ext.NewPainPoints = append(ext.NewPainPoints, label)
		}
	}

	return ext
}

func (e *Extractor) extractContact(c *models.LLMContext, content string, ext *Extraction) {
	if email := emailPattern.FindString(content); email != "" {
		email = strings.ToLower(email)
		switch c.UserInfo.Email {
		case "":
			c.UserInfo.Email = email
			ext.EmailFound = true
		case email:
			// repeat of the known address
		default:
			ext.Conflicts = append(ext.Conflicts,
				fmt.Sprintf("email %q conflicts with previously recorded %q; keeping first", email, c.UserInfo.Email))
		}
	}

	if phone := phonePattern.FindString(content); phone != "" {
		phone = strings.TrimSpace(phone)
		switch c.UserInfo.Phone {
		case "":
			c.UserInfo.Phone = phone
		case phone:
		default:
			ext.Conflicts = append(ext.Conflicts,
				fmt.Sprintf("phone %q conflicts with previously recorded %q; keeping first", phone, c.UserInfo.Phone))
		}
	}

	if m := namePattern.FindStringSubmatch(content); m != nil && c.UserInfo.Name == "" {
		c.UserInfo.Name = strings.TrimSpace(m[1])
	}

	if m := orgPattern.FindStringSubmatch(content); m != nil && c.UserInfo.Company == "" {
		c.UserInfo.Company = strings.TrimSpace(m[1])
	}
}

// containsPhrase matches a phrase on word boundaries so "crm" does not
// fire inside an unrelated word.
func containsPhrase(haystack, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
