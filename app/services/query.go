package services

import (
	"fmt"
	"strings"

	"github.com/vitthalk15/DataDash/app/repositories"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery is the paging and sorting part of every list request.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
}

// page clamps Page and Limit to their defaults and bounds.
func (q ListQuery) page() repositories.Page {
	p := repositories.Page{Number: q.Page, Size: q.Limit}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// sort validates SortBy against allowed. Unknown fields are a validation
// error; an empty field sorts by createdAt.
func (q ListQuery) sort(allowed []string) (repositories.Sort, error) {
	s := repositories.Sort{Field: strings.TrimSpace(q.SortBy), Desc: true}
	if s.Field == "" {
		s.Field = "createdAt"
	}
	if !repositories.Sortable(s.Field, allowed) {
		return s, invalid("sortBy", fmt.Sprintf("The sortBy must be one of: %s.", strings.Join(allowed, ", ")))
	}
	switch strings.ToLower(strings.TrimSpace(q.SortOrder)) {
	case "", "desc":
	case "asc":
		s.Desc = false
	default:
		return s, invalid("sortOrder", "The sortOrder must be asc or desc.")
	}
	return s, nil
}
