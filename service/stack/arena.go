package stack

import (
	"context"
	"sort"
	"sync"
)

type extent struct {
	start uint64
	pages uint64
}

// Arena is a first-fit extent allocator over a fixed address range. Free
// space lives in an address-sorted extent list; allocations carve from
// the front of the first fitting extent and releases coalesce with both
// neighbours, so fragmentation stays bounded by the live allocation
// pattern.
type Arena struct {
	mu    sync.Mutex
	base  uint64
	pages uint64
	free  []extent
	sizes map[uint64]uint64
}

// NewArena creates an arena spanning pages starting at base.
func NewArena(config Config) (*Arena, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Arena{
		base:  config.Base,
		pages: config.Pages,
		free:  []extent{{start: config.Base, pages: config.Pages}},
		sizes: make(map[uint64]uint64),
	}, nil
}

// Allocate reserves a contiguous range of at least size bytes and returns
// its stack top.
func (a *Arena) Allocate(ctx context.Context, size uint64) (uint64, error) {
	if size == 0 {
		size = 1
	}
	need := (size + PageSize - 1) / PageSize

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.free {
		if a.free[i].pages < need {
			continue
		}
		start := a.free[i].start
		a.free[i].start += need * PageSize
		a.free[i].pages -= need
		if a.free[i].pages == 0 {
			a.free = append(a.free[:i], a.free[i+1:]...)
		}
		top := start + need*PageSize
		a.sizes[top] = need
		return top, nil
	}
	return 0, ErrOutOfMemory
}

// Release returns the range below top to the arena.
func (a *Arena) Release(ctx context.Context, top uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	pages, ok := a.sizes[top]
	if !ok {
		return ErrUnknownStack
	}
	delete(a.sizes, top)

	freed := extent{start: top - pages*PageSize, pages: pages}
	at := sort.Search(len(a.free), func(i int) bool {
		return a.free[i].start > freed.start
	})
	a.free = append(a.free, extent{})
	copy(a.free[at+1:], a.free[at:])
	a.free[at] = freed

	// coalesce with the right neighbour first so indexes stay stable
	if at+1 < len(a.free) && freed.start+freed.pages*PageSize == a.free[at+1].start {
		a.free[at].pages += a.free[at+1].pages
		a.free = append(a.free[:at+1], a.free[at+2:]...)
	}
	if at > 0 && a.free[at-1].start+a.free[at-1].pages*PageSize == a.free[at].start {
		a.free[at-1].pages += a.free[at].pages
		a.free = append(a.free[:at], a.free[at+1:]...)
	}
	return nil
}

// PagesFree reports unallocated capacity in pages.
func (a *Arena) PagesFree() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var total uint64
	for _, e := range a.free {
		total += e.pages
	}
	return total
}

// Live reports the number of outstanding stacks.
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sizes)
}

var _ Provider = (*Arena)(nil)
