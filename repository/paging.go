package repository

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// PageSize is the number of records in one listing page.
const PageSize = 100

// pageCount mirrors the public contract: floor(total/PageSize) + 1, so an
// exact multiple of PageSize still reports one trailing (empty) page.
func pageCount(total int64) int {
	return int(total/PageSize) + 1
}

// pageOffset returns the row offset for page, or false when page is negative
// or so large that no store could hold rows there.
func pageOffset(page int) (int, bool) {
	if page < 0 || page > math.MaxInt/PageSize-1 {
		return 0, false
	}
	return page * PageSize, true
}

// loadPage runs the count query and the page query side by side on separate
// pooled connections. fetch is skipped for pages that cannot hold rows.
func loadPage(ctx context.Context, page int, count func(context.Context) (int64, error), fetch func(ctx context.Context, offset int) error) (int, error) {
	g, gctx := errgroup.WithContext(ctx)

	var total int64
	g.Go(func() error {
		n, err := count(gctx)
		if err != nil {
			return err
		}
		total = n
		return nil
	})

	if offset, ok := pageOffset(page); ok {
		g.Go(func() error {
			return fetch(gctx, offset)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return pageCount(total), nil
}
