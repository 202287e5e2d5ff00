package web

import (
	"io"

	"git.sr.ht/~jakintosh/todo/internal/domain"
)

// FilterView holds data for one filter selector button
type FilterView struct {
	Name   domain.Filter
	Label  string
	URL    string
	Active bool
}

type PageView struct {
	Title   string
	Filter  domain.Filter
	Filters []FilterView
	List    TaskListView
}

func NewPageView(filter domain.Filter, list TaskListView) PageView {
	view := PageView{
		Title:  "Colorful Todo",
		Filter: filter,
		List:   list,
	}
	for _, f := range domain.Filters {
		view.Filters = append(view.Filters, FilterView{
			Name:   f,
			Label:  filterLabel(f),
			URL:    indexURL(f),
			Active: f == filter,
		})
	}
	return view
}

func filterLabel(f domain.Filter) string {
	switch f {
	case domain.FilterActive:
		return "Active"
	case domain.FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

func (p *Presentation) RenderIndex(w io.Writer, view PageView) error {
	return p.tmpl.ExecuteTemplate(w, "layout.html", view)
}
