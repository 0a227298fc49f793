// Package clean repairs model output that is usable but malformed: tags and chart data.
package clean

import (
	"regexp"
	"strings"
)

// tagPattern is matched against the lower-cased tag.
var tagPattern = regexp.MustCompile(`^[a-záäčďéíĺľňóôŕšťúýž# ]+$`)

// Tag repairs one tag. A tag whose lower-cased form fails tagPattern is lower-cased
// and has underscores replaced with spaces. Valid tags are returned unchanged.
func Tag(tag string) string {
	lower := strings.ToLower(tag)
	if tagPattern.MatchString(lower) {
		return tag
	}
	return strings.ReplaceAll(lower, "_", " ")
}

// Tags repairs every tag in order.
func Tags(tags []string) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = Tag(tag)
	}
	return out
}
