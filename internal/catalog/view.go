package catalog

import (
	"unigang/annex/internal/models"
	"unigang/annex/internal/pagination"
)

// View is the browse state over a collection: the active filter plus a pager
// over the filtered result. Changing the filter always returns to page 1.
type View struct {
	all      []models.Listing
	filter   Filter
	filtered []models.Listing
	pager    *pagination.Pager
}

func NewView(all []models.Listing, pageSize int) *View {
	v := &View{all: all}
	v.filtered = Apply(all, Filter{})
	v.pager = pagination.NewPager(pageSize, len(v.filtered))
	return v
}

func (v *View) Filter() Filter { return v.filter }

func (v *View) SetFilter(f Filter) {
	v.filter = f
	v.filtered = Apply(v.all, f)
	v.pager.Reset(len(v.filtered))
}

func (v *View) SetQuery(q string) {
	f := v.filter
	f.Query = q
	v.SetFilter(f)
}

func (v *View) SetCampus(c string) {
	f := v.filter
	f.Campus = c
	v.SetFilter(f)
}

func (v *View) Next() int        { return v.pager.Next() }
func (v *View) Previous() int    { return v.pager.Previous() }
func (v *View) JumpTo(n int) int { return v.pager.JumpTo(n) }

// Page returns the visible slice for the current page.
func (v *View) Page() pagination.Page[models.Listing] {
	return pagination.Paginate(v.filtered, v.pager.PageSize(), v.pager.Current())
}
