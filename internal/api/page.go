package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/timetrak/client/internal/domain"
)

// PageRequest 对应列表接口的 page/size 以及 sort 或 sortBy/sortDir 参数
type PageRequest struct {
	Page    int
	Size    int
	Sort    string // 例如 "name,asc"
	SortBy  string
	SortDir string
}

func (p PageRequest) Values() url.Values {
	v := url.Values{}
	p.apply(v)
	return v
}

func (p PageRequest) apply(v url.Values) {
	v.Set("page", strconv.Itoa(max(p.Page, 0)))
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	if p.SortBy != "" {
		v.Set("sortBy", p.SortBy)
		if p.SortDir != "" {
			v.Set("sortDir", p.SortDir)
		}
	}
}

type pageEnvelope[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// decodePage 同时接受裸数组和 {content, totalElements, totalPages} 两种响应
func decodePage[T any](data []byte) (domain.Page[T], error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return domain.SinglePage[T](nil), nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return domain.Page[T]{}, err
		}
		return domain.SinglePage(items), nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return domain.Page[T]{}, err
	}
	if env.Content == nil {
		env.Content = []T{}
	}
	if env.TotalElements == 0 && len(env.Content) > 0 {
		env.TotalElements = int64(len(env.Content))
	}
	if env.TotalPages == 0 && len(env.Content) > 0 {
		env.TotalPages = 1
	}
	return domain.Page[T]{
		Content:       env.Content,
		TotalElements: env.TotalElements,
		TotalPages:    env.TotalPages,
		Number:        env.Number,
		Size:          env.Size,
	}, nil
}

func getPage[T any](ctx context.Context, c *Client, path string, query url.Values) (domain.Page[T], error) {
	data, err := c.raw(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return domain.Page[T]{}, err
	}
	page, err := decodePage[T](data)
	if err != nil {
		return domain.Page[T]{}, fmt.Errorf("decode GET %s: %w", path, err)
	}
	return page, nil
}

// getList 用于只返回数组的接口，同样容忍分页包装
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	page, err := getPage[T](ctx, c, path, query)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func withPage(p PageRequest, extra url.Values) url.Values {
	v := url.Values{}
	for k, vals := range extra {
		v[k] = vals
	}
	p.apply(v)
	return v
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
