package view

import (
	"fmt"

	"github.com/timetrak/client/internal/domain"
)

type Pager struct {
	Page          int
	TotalPages    int
	TotalElements int64
}

func PagerOf[T any](p domain.Page[T]) Pager {
	return Pager{Page: p.Number, TotalPages: p.TotalPages, TotalElements: p.TotalElements}
}

func (p Pager) HasPrev() bool {
	return p.Page > 0
}

func (p Pager) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

// Label 使用从 1 开始的页码
func (p Pager) Label() string {
	if p.TotalPages == 0 {
		return "No results"
	}
	return fmt.Sprintf("Page %d of %d (%d total)", p.Page+1, p.TotalPages, p.TotalElements)
}

// Window 返回以当前页为中心、最多 width 个页码的区间 [from, to)
func (p Pager) Window(width int) (from, to int) {
	if p.TotalPages <= 0 || width <= 0 {
		return 0, 0
	}
	width = min(width, p.TotalPages)
	from = max(p.Page-width/2, 0)
	to = from + width
	if to > p.TotalPages {
		to = p.TotalPages
		from = to - width
	}
	return from, to
}
