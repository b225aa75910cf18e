package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error 是非 2xx 响应；Message 取自服务端返回的 message 字段，没有时为空
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

func newError(method, path string, resp *http.Response) *Error {
	apiErr := &Error{Method: method, Path: path, Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		// 部分接口直接返回纯文本
		if text := strings.TrimSpace(string(data)); !strings.HasPrefix(text, "<") {
			apiErr.Message = text
		}
		return apiErr
	}

	switch {
	case body.Message != "":
		apiErr.Message = body.Message
	case body.Error != "":
		apiErr.Message = body.Error
	}
	return apiErr
}

// StatusOf 返回错误链上的 HTTP 状态码，不是 *Error 时返回 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage 让 notify 在提示中优先展示服务端的信息
func (e *Error) UserMessage() string {
	return e.Message
}
