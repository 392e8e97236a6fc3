package mcpservice

import "strconv"

// Page is a generic pagination container for list results.
type Page[T any] struct {
	Items      []T
	NextCursor *string
}

// NewPage constructs a Page from items and optional settings.
func NewPage[T any](items []T, opts ...PageOption[T]) Page[T] {
	p := Page[T]{Items: items}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// PageOption configures a Page.
type PageOption[T any] func(*Page[T])

// WithNextCursor sets the next cursor on the page.
func WithNextCursor[T any](cursor string) PageOption[T] {
	return func(p *Page[T]) { p.NextCursor = &cursor }
}

// Paginate slices items into a page of at most size entries starting at the
// offset encoded in cursor. A non-positive size returns everything.
func Paginate[T any](items []T, cursor *string, size int) Page[T] {
	if size <= 0 {
		return NewPage(items)
	}
	start := parseCursor(cursor)
	if start >= len(items) {
		return NewPage[T](nil)
	}
	end := start + size
	if end >= len(items) {
		return NewPage(items[start:])
	}
	return NewPage(items[start:end], WithNextCursor[T](strconv.Itoa(end)))
}

func parseCursor(cursor *string) int {
	if cursor == nil || *cursor == "" {
		return 0
	}
	n, err := strconv.Atoi(*cursor)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
