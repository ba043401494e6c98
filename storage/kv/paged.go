package kv

import (
	"github.com/jrife/kvbucket/storage/kv/keys"
)

// DefaultPageSize is the page size used by NewPagedIterator
// when it is given a page size <= 0
const DefaultPageSize = 256

// PageFunc reads up to limit pairs from keys in the
// given order. It returns fewer than limit pairs only
// when the range is exhausted. The returned slices must
// not be modified by the engine afterwards.
type PageFunc func(keys keys.Range, order SortOrder, limit int) ([]KV, error)

// NewPagedIterator returns an iterator that reads the range
// one page at a time. After every page the range is narrowed
// to start after the last key that was read so no read
// transaction or lock needs to be held between calls to Next.
func NewPagedIterator(keys keys.Range, order SortOrder, pageSize int, fetch PageFunc) Iterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &pagedIterator{keys: keys, order: order, pageSize: pageSize, fetch: fetch}
}

type pagedIterator struct {
	keys      keys.Range
	order     SortOrder
	pageSize  int
	fetch     PageFunc
	page      []KV
	current   KV
	exhausted bool
	closed    bool
	err       error
}

func (iter *pagedIterator) Next() bool {
	iter.current = KV{}

	if iter.err != nil || iter.closed {
		return false
	}

	if len(iter.page) == 0 {
		if iter.exhausted || iter.keys.Empty() {
			return false
		}

		page, err := iter.fetch(iter.keys, iter.order, iter.pageSize)

		if err != nil {
			iter.err = err

			return false
		}

		if len(page) < iter.pageSize {
			iter.exhausted = true
		}

		if len(page) == 0 {
			return false
		}

		iter.page = page
		iter.advance(page[len(page)-1].Key)
	}

	iter.current = iter.page[0]
	iter.page = iter.page[1:]

	return true
}

// advance narrows the range so the next page starts
// right after last
func (iter *pagedIterator) advance(last []byte) {
	if iter.order == SortOrderDesc {
		iter.keys.Max = last
	} else {
		iter.keys.Min = keys.After(last)
	}
}

func (iter *pagedIterator) Key() []byte {
	return iter.current.Key
}

func (iter *pagedIterator) Value() []byte {
	return iter.current.Value
}

func (iter *pagedIterator) Error() error {
	return iter.err
}

func (iter *pagedIterator) Close() error {
	iter.closed = true
	iter.page = nil
	iter.current = KV{}

	return nil
}
