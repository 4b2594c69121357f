package styles

// Glyphs used by the review list.
var (
	GlyphStarFull  = "★"
	GlyphStarEmpty = "☆"
	GlyphBlock     = "█"
	GlyphCursor    = "▌"
	GlyphDot       = "•"
)
