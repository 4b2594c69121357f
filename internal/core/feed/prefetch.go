package feed

// PrefetchScreens is how many viewports of remaining content trigger loading
// the next page.
const PrefetchScreens = 2.5

// ShouldPrefetch reports whether the next page should be requested when a
// scroll will come to rest at targetOffset.
func ShouldPrefetch(viewportExtent, contentExtent, targetOffset float64) bool {
	return ShouldPrefetchWithin(viewportExtent, contentExtent, targetOffset, PrefetchScreens)
}

// ShouldPrefetchWithin is ShouldPrefetch with a custom screen threshold.
func ShouldPrefetchWithin(viewportExtent, contentExtent, targetOffset, screens float64) bool {
	remaining := contentExtent - viewportExtent - targetOffset
	return remaining <= viewportExtent*screens
}
