package pagination

// Pager tracks the current page of a collection whose size may change.
// None of its operations fail; moves past either end are no-ops.
type Pager struct {
	pageSize int
	count    int
	current  int
}

func NewPager(pageSize, count int) *Pager {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Pager{pageSize: pageSize, count: count, current: 1}
}

func (p *Pager) Current() int    { return p.current }
func (p *Pager) PageSize() int   { return p.pageSize }
func (p *Pager) TotalPages() int { return TotalPages(p.count, p.pageSize) }

func (p *Pager) Next() int {
	if p.current < p.TotalPages() {
		p.current++
	}
	return p.current
}

func (p *Pager) Previous() int {
	if p.current > 1 {
		p.current--
	}
	return p.current
}

// JumpTo moves to n, clamped into range.
func (p *Pager) JumpTo(n int) int {
	p.current = Clamp(n, p.TotalPages())
	return p.current
}

// Reset points the pager at a new collection size and goes back to page 1.
func (p *Pager) Reset(count int) {
	p.count = count
	p.current = 1
}

// Resize updates the collection size keeping the current page when still in range.
func (p *Pager) Resize(count int) {
	p.count = count
	p.current = Clamp(p.current, p.TotalPages())
}
