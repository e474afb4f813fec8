// Package sanitize provides HTML sanitization for director-edited content.
// Uses bluemonday to strip dangerous HTML (script tags, event handlers,
// javascript: URLs) while preserving the safe formatting tags the portal
// editors emit (bold, lists, links, headings).
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton bluemonday policy for sanitizing director HTML.
// Initialized once via sync.Once for thread-safe lazy initialization.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Allow class attributes -- the portal editor uses classes for
		// text alignment and highlight styles on headings and paragraphs.
		policy.AllowAttrs("class").OnElements("p", "div", "span", "h1", "h2", "h3", "h4", "ul", "ol", "li")

		// Allow style on spans for inline color from the editor toolbar.
		policy.AllowAttrs("style").OnElements("span", "p")

		// Links open in a new tab on the TV display; force safe targets.
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// HTML sanitizes director-provided HTML content by stripping dangerous
// elements (script, iframe, event handlers, javascript: URLs) while
// preserving safe formatting tags.
//
// This MUST be called on every scalar content field before storing it.
// Complex (structured) fields are stored as JSON documents and are not
// rendered as raw HTML, so they bypass this path.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return getPolicy().Sanitize(input)
}
