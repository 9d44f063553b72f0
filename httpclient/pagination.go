package httpclient

const (
	defaultLimit    = 100
	defaultMaxPages = 10
	defaultMaxItems = 1000
)

// PaginationBounds are the ceilings a paginating caller must respect.
type PaginationBounds struct {
	// DefaultLimit is the page size used when the caller gives none.
	DefaultLimit int
	// MaxPages is the maximum number of pages fetched by one call.
	MaxPages int
	// MaxItems is the maximum number of items accumulated by one call.
	MaxItems int
}

// DefaultPaginationBounds returns the default ceilings.
func DefaultPaginationBounds() PaginationBounds {
	return PaginationBounds{
		DefaultLimit: defaultLimit,
		MaxPages:     defaultMaxPages,
		MaxItems:     defaultMaxItems,
	}
}

// Limit returns requested, or DefaultLimit when requested is not positive.
func (b PaginationBounds) Limit(requested int) int {
	if requested > 0 {
		return requested
	}
	return b.DefaultLimit
}

// Exhausted reports whether fetching another page would exceed a ceiling.
// pages and items count what has been fetched so far.
func (b PaginationBounds) Exhausted(pages, items int) bool {
	return (b.MaxPages > 0 && pages >= b.MaxPages) || (b.MaxItems > 0 && items >= b.MaxItems)
}

// Remaining returns how many more items may be accumulated, or -1 when
// MaxItems is not set.
func (b PaginationBounds) Remaining(items int) int {
	if b.MaxItems <= 0 {
		return -1
	}
	return max(b.MaxItems-items, 0)
}

// overlay applies the positive per-call ceilings of call.
func (b PaginationBounds) overlay(call *CallOptions) PaginationBounds {
	if call == nil {
		return b
	}
	if call.MaxPages > 0 {
		b.MaxPages = call.MaxPages
	}
	if call.MaxItems > 0 {
		b.MaxItems = call.MaxItems
	}
	return b
}
