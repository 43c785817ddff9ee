// Package pagination provides stateless offset/limit windows with
// has-more detection over sorted store queries.
package pagination

import "context"

// DefaultPageSize is used when a request does not specify a size.
const DefaultPageSize = 20

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// Window converts a 1-indexed page number and size into skip/limit.
// Page numbers below 1 clamp to the first page.
func Window(pageNumber, pageSize int) (skip, limit int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return (pageNumber - 1) * pageSize, pageSize
}

// Collect fetches one window and computes HasNext from an independent
// count query. fetch and count must apply the identical filter; an
// out-of-range page yields empty items and HasNext=false, not an error.
func Collect[T any](
	ctx context.Context,
	pageNumber, pageSize int,
	fetch func(ctx context.Context, skip, limit int) ([]T, error),
	count func(ctx context.Context) (int64, error),
) (Page[T], error) {
	skip, limit := Window(pageNumber, pageSize)

	items, err := fetch(ctx, skip, limit)
	if err != nil {
		return Page[T]{}, err
	}
	total, err := count(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		HasNext: total > int64(skip+len(items)),
	}, nil
}
