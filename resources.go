package mindful

import (
	"strings"
	"time"
)

// ──────────────────────────────────────────────
// Resource Catalog — crisis contact lookup
// ──────────────────────────────────────────────

// Fallback keys merged when a location has no catalog entry.
const (
	resourceKeyUS            = "us"
	resourceKeyInternational = "international"
)

// defaultCrisisResources is the built-in catalog. The contact strings are
// safety-critical operational content: keep them literal, never paraphrase.
var defaultCrisisResources = map[string]map[string]string{
	"us": {
		"988 Suicide & Crisis Lifeline":   "988 or 1-800-273-8255 (24/7)",
		"Crisis Text Line":                "Text HOME to 741741",
		"SAMHSA National Helpline":        "1-800-662-4357",
		"Trevor Project (LGBTQ+ Youth)":   "1-866-488-7386",
		"Veterans Crisis Line":            "988 then press 1",
	},
	"international": {
		"International Association for Suicide Prevention": "https://www.iasp.info/resources/Crisis_Centres/",
		"Befrienders Worldwide":                            "https://www.befrienders.org/",
	},
}

// ResourceLookup is the result of a catalog lookup.
type ResourceLookup struct {
	Location  string            `json:"location"`
	Resources map[string]string `json:"resources"`
	Timestamp time.Time         `json:"timestamp"`
}

// ResourceCatalog maps location keys (case-insensitive) to contact-info
// records. The catalog is immutable after construction.
type ResourceCatalog struct {
	entries map[string]map[string]string
}

// NewResourceCatalog creates a catalog seeded with the built-in US and
// international contact sets.
func NewResourceCatalog() *ResourceCatalog {
	return NewResourceCatalogFrom(defaultCrisisResources)
}

// NewResourceCatalogFrom creates a catalog from the given entries.
// Location keys are stored lower-cased; entries are deep-copied so later
// mutation of the argument cannot affect the catalog.
func NewResourceCatalogFrom(entries map[string]map[string]string) *ResourceCatalog {
	copied := make(map[string]map[string]string, len(entries))
	for loc, res := range entries {
		inner := make(map[string]string, len(res))
		for name, contact := range res {
			inner[name] = contact
		}
		copied[strings.ToLower(loc)] = inner
	}
	return &ResourceCatalog{entries: copied}
}

// Lookup returns the contact set for a location (case-insensitive).
//
// An unrecognized location returns the union of the "us" and
// "international" sets so the caller still gets actionable contacts;
// on a name collision the international entry wins.
func (c *ResourceCatalog) Lookup(location string) *ResourceLookup {
	key := strings.ToLower(location)

	var resources map[string]string
	if exact, ok := c.entries[key]; ok {
		resources = copyResources(exact)
	} else {
		resources = copyResources(c.entries[resourceKeyUS])
		for name, contact := range c.entries[resourceKeyInternational] {
			resources[name] = contact
		}
	}

	return &ResourceLookup{
		Location:  location,
		Resources: resources,
		Timestamp: time.Now(),
	}
}

func copyResources(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
