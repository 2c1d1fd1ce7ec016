package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	slugStripRegex    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapseRegex = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a URL slug from a title. It is an explicit pre-persist
// step: callers generate the slug before saving, there is no save hook.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugCollapseRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = fmt.Sprintf("untitled-%d", time.Now().Unix())
	}
	return slug
}

// DedupeSlug appends a timestamp suffix to a colliding slug.
func DedupeSlug(slug string, now time.Time) string {
	return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
}
