package review

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// wirePage mirrors the page payload. Pointer fields let validation tell a
// missing key apart from a zero value.
type wirePage struct {
	Items []wireReview `json:"items" validate:"required,dive"`
	Count *int         `json:"count" validate:"required,gte=0"`
}

type wireReview struct {
	Text      *string  `json:"text" validate:"required"`
	Created   *string  `json:"created" validate:"required"`
	FirstName *string  `json:"first_name" validate:"required"`
	LastName  *string  `json:"last_name" validate:"required"`
	Rating    *int     `json:"rating" validate:"required"`
	AvatarURL *string  `json:"avatar_url,omitempty"`
	PhotoURLs []string `json:"photo_urls,omitempty"`
}

// Decode parses a page payload. An empty body yields ErrNoData; malformed or
// incomplete payloads yield an error wrapping ErrDecode.
func Decode(data []byte) (Page, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Page{}, ErrNoData
	}

	var wp wirePage
	if err := json.Unmarshal(data, &wp); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if err := validate.Struct(wp); err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	page := Page{
		Items: make([]Review, len(wp.Items)),
		Count: *wp.Count,
	}
	for i, wr := range wp.Items {
		r := Review{
			Text:      *wr.Text,
			Created:   *wr.Created,
			FirstName: *wr.FirstName,
			LastName:  *wr.LastName,
			Rating:    *wr.Rating,
			PhotoRefs: wr.PhotoURLs,
		}
		if wr.AvatarURL != nil {
			r.AvatarRef = *wr.AvatarURL
		}
		page.Items[i] = r
	}

	return page, nil
}

// Encode renders a page in the wire format.
func Encode(p Page) ([]byte, error) {
	count := p.Count
	wp := wirePage{
		Items: make([]wireReview, len(p.Items)),
		Count: &count,
	}
	for i, r := range p.Items {
		wr := wireReview{
			Text:      &r.Text,
			Created:   &r.Created,
			FirstName: &r.FirstName,
			LastName:  &r.LastName,
			Rating:    &r.Rating,
			PhotoURLs: r.PhotoRefs,
		}
		if r.AvatarRef != "" {
			wr.AvatarURL = &r.AvatarRef
		}
		wp.Items[i] = wr
	}

	data, err := json.Marshal(wp)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return data, nil
}
