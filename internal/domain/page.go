package domain

// Pagination defaults.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Page is a skip/limit window applied after ordering.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the page into the accepted range. A zero or negative
// limit falls back to DefaultPageSize.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}
