package storage

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page selects a window of a list query. Search is matched as a case-insensitive substring.
type Page struct {
	Skip   int64
	Limit  int64
	Search string
}

// NewPage turns 1-based page numbers into a skip/limit window.
func NewPage(page, limit int64, search string) Page {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page < 1 {
		page = 1
	}

	return Page{Skip: (page - 1) * limit, Limit: limit, Search: search}
}
