package rows

// RowHandle is a recyclable row owned by the rendering layer.
type RowHandle interface {
	Update(row RowDescriptor)
	Dispose()
}

// Pool recycles row handles for one column. Handles are reused in order;
// the pool grows on demand and disposes the surplus when fewer rows are
// visible.
type Pool struct {
	newHandle func() RowHandle
	handles   []RowHandle
}

// NewPool creates a pool that allocates handles with newHandle. A nil
// factory produces MemoryRow handles.
func NewPool(newHandle func() RowHandle) *Pool {
	if newHandle == nil {
		newHandle = func() RowHandle { return &MemoryRow{} }
	}
	return &Pool{newHandle: newHandle}
}

// Acquire returns the i-th handle, allocating any missing ones.
func (p *Pool) Acquire(i int) RowHandle {
	for len(p.handles) <= i {
		p.handles = append(p.handles, p.newHandle())
	}
	return p.handles[i]
}

// Trim disposes every handle from n on and returns how many were disposed.
func (p *Pool) Trim(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(p.handles) {
		return 0
	}
	disposed := 0
	for _, h := range p.handles[n:] {
		h.Dispose()
		disposed++
	}
	clear(p.handles[n:])
	p.handles = p.handles[:n]
	return disposed
}

// Len returns the number of live handles.
func (p *Pool) Len() int {
	return len(p.handles)
}

// Handles returns the live handles in row order.
func (p *Pool) Handles() []RowHandle {
	return p.handles
}

// MemoryRow keeps the last descriptor it was given.
type MemoryRow struct {
	Row      RowDescriptor
	Updates  int
	Disposed bool
}

func (r *MemoryRow) Update(row RowDescriptor) {
	r.Row = row
	r.Updates++
}

func (r *MemoryRow) Dispose() {
	r.Disposed = true
}
