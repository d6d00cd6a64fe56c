package data

import (
	"context"
	"errors"
	"fmt"
)

const PAGE_SIZE int = 50

var ErrPageLimitExceeded = errors.New("page limit exceeded")

// Gets the page at the given cursor. A nil cursor asks for the first page.
// A nil next cursor marks the returned page as the last one.
type PageGetter[T any] func(ctx context.Context, cursor *string) (items []T, next *string, err error)

// Typically represents a stream of data from a paginated query response.
// Pages are fetched lazily, in order, and only when the previous page has been consumed.
type IterablePaginatedData[T any] struct {
	// Gets data at the given page.
	GetPage PageGetter[T]
	// Maximum number of pages fetched before giving up. Zero means unbounded.
	MaxPages int

	currentPage           []T
	currentPositionInPage int
	currentCursor         *string
	pagesFetched          int
	exhausted             bool
}

func NewIterablePaginatedData[T any](getPage PageGetter[T]) IterablePaginatedData[T] {
	return IterablePaginatedData[T]{GetPage: getPage}
}

// Provide the next value if it exists, otherwise check for more data before returning nil.
func (i *IterablePaginatedData[T]) Next(ctx context.Context) (*T, error) {
	for {
		// Within page
		if i.currentPositionInPage < len(i.currentPage) {
			value := &i.currentPage[i.currentPositionInPage]
			i.currentPositionInPage++
			return value, nil
		}

		// No more data
		if i.exhausted {
			return nil, nil
		}

		// End of page
		err := i.goToNextPage(ctx)
		if err != nil {
			return nil, err
		}
	}
}

// Drain the remaining values into a slice, in arrival order.
func (i *IterablePaginatedData[T]) Collect(ctx context.Context) ([]T, error) {
	items := []T{}
	for {
		item, err := i.Next(ctx)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return items, nil
		}
		items = append(items, *item)
	}
}

// Forget all fetched pages so the next call to Next starts again from the first page.
func (i *IterablePaginatedData[T]) Reset() {
	i.currentPage = nil
	i.currentPositionInPage = 0
	i.currentCursor = nil
	i.pagesFetched = 0
	i.exhausted = false
}

// Number of pages fetched since creation or the last Reset.
func (i *IterablePaginatedData[T]) Pages() int {
	return i.pagesFetched
}

// Get next page and update state for next next page
func (i *IterablePaginatedData[T]) goToNextPage(ctx context.Context) error {
	if i.MaxPages > 0 && i.pagesFetched >= i.MaxPages {
		return fmt.Errorf("error getting page %v after %v pages: %w", cursorString(i.currentCursor), i.pagesFetched, ErrPageLimitExceeded)
	}
	i.currentPositionInPage = 0
	nextPage, nextCursor, err := i.GetPage(ctx, i.currentCursor)
	if err != nil {
		return fmt.Errorf("error getting page %v: %w", cursorString(i.currentCursor), err)
	}
	i.pagesFetched++
	i.currentPage = nextPage
	i.currentCursor = nextCursor
	i.exhausted = nextCursor == nil
	return nil
}

func cursorString(cursor *string) string {
	if cursor == nil {
		return "<first>"
	}
	return *cursor
}
