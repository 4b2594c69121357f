package layout

// Design tokens for review cells, in layout units.
const (
	InsetTop    = 9.0
	InsetLeft   = 12.0
	InsetBottom = 9.0
	InsetRight  = 12.0

	AvatarSize         = 36.0
	AvatarCornerRadius = 18.0

	PhotoWidth        = 55.0
	PhotoHeight       = 66.0
	PhotoCornerRadius = 8.0
	PhotoSpacing      = 8.0

	AvatarToColumnSpacing    = 10.0
	UsernameToRatingSpacing  = 6.0
	RatingToTextSpacing      = 6.0
	PhotosToTextSpacing      = 10.0
	TextToCreatedSpacing     = 6.0
	ShowMoreToCreatedSpacing = 6.0

	// Rating glyph: five stars in a row.
	RatingStars       = 5
	RatingStarSize    = 16.0
	RatingStarSpacing = 1.0

	DefaultMaxLines = 3

	// CountRowHeight is the fixed height of the trailing review count row.
	CountRowHeight = 44.0
)

// ShowMoreText is the label of the control that expands truncated text.
const ShowMoreText = "Show full review..."

// RatingWidth is the width of the rating glyph.
const RatingWidth = RatingStars*RatingStarSize + (RatingStars-1)*RatingStarSpacing
