// Package review holds the review data model and its wire format.
package review

import "strings"

// Review is a single user review as decoded from a page payload. Values are
// built once per decode and never mutated afterwards.
type Review struct {
	Text      string
	Created   string // display label, not parsed as a date
	FirstName string
	LastName  string
	Rating    int
	AvatarRef string // empty when the author has no avatar
	PhotoRefs []string
}

// Username returns the author's display name.
func (r Review) Username() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// AvatarURL returns the avatar reference and whether one is present.
func (r Review) AvatarURL() (string, bool) {
	ref := strings.TrimSpace(r.AvatarRef)
	return ref, ref != ""
}

// PhotoURLs returns the non-empty photo references in their original order.
func (r Review) PhotoURLs() []string {
	if len(r.PhotoRefs) == 0 {
		return nil
	}

	urls := make([]string, 0, len(r.PhotoRefs))
	for _, ref := range r.PhotoRefs {
		if ref = strings.TrimSpace(ref); ref != "" {
			urls = append(urls, ref)
		}
	}
	return urls
}

// Page is one batch of reviews plus the server-side total.
type Page struct {
	Items []Review
	Count int
}
