package domain

// Page 是列表接口统一后的分页结果，Number 从 0 开始
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// SinglePage 把一个不分页的数组包装成只有一页的 Page
func SinglePage[T any](items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if len(items) > 0 {
		pages = 1
	}
	return Page[T]{
		Content:       items,
		TotalElements: int64(len(items)),
		TotalPages:    pages,
		Number:        0,
		Size:          len(items),
	}
}
