package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

func (s *Server) logInternalServerError(r *http.Request, err error) {
	s.logger.Error("internal server error", "method", r.Method, "path", r.URL.Path, "error", err)
}

func (s *Server) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logInternalServerError(r, err)
	}
}

type errorBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.writeJSON(w, r, status, errorBody{
		Status:  status,
		Error:   http.StatusText(status),
		Message: msg,
	})
}

// badRequest 对校验错误只返回第一条翻译后的信息
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		s.errorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.errorResponse(w, r, http.StatusBadRequest, validationErrors[0].Translate(s.translator))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request, what string) {
	s.errorResponse(w, r, http.StatusNotFound, what+" not found")
}

func (s *Server) conflict(w http.ResponseWriter, r *http.Request, msg string) {
	s.errorResponse(w, r, http.StatusConflict, msg)
}

func (s *Server) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	s.logInternalServerError(r, err)
	s.errorResponse(w, r, http.StatusInternalServerError, "Internal server error")
}

// decodeAndValidate 读取请求体并按 validate 标签校验，失败时已经写好响应
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := s.readJSON(r, v); err != nil {
		s.badRequest(w, r, errors.New("Malformed JSON body"))
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.badRequest(w, r, err)
		return false
	}
	return true
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

type pageEnvelope[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

const defaultPageSize = 20

// writePage 按 page/size/sortDir 参数切出一页；BareArrays 模式下直接返回数组
func writePage[T any](s *Server, w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	if r.URL.Query().Get("sortDir") == "desc" {
		items = slices.Clone(items)
		slices.Reverse(items)
	}
	if s.opts.BareArrays {
		s.writeJSON(w, r, http.StatusOK, items)
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	page = max(page, 0)
	if size <= 0 {
		size = defaultPageSize
	}

	total := len(items)
	start := min(page*size, total)
	end := min(start+size, total)
	s.writeJSON(w, r, http.StatusOK, pageEnvelope[T]{
		Content:       items[start:end],
		TotalElements: int64(total),
		TotalPages:    (total + size - 1) / size,
		Number:        page,
		Size:          size,
	})
}
