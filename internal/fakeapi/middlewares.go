package fakeapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/timetrak/client/internal/domain"
)

type ContextKey string

var (
	RoleCtxKey ContextKey = "role"
	SubCtxKey  ContextKey = "sub"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		s.logger.Debug("handled request", "status", rw.StatusCode, "method", r.Method, "path", r.URL.Path,
			"request_id", r.Header.Get("X-Request-ID"), "duration", time.Since(start))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				fmt.Print(string(debug.Stack()))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// endpoint 去掉 /api 前缀和末尾的斜杠
func endpoint(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return r.Method + " " + path
}

func (s *Server) counter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		k := endpoint(r)
		s.hitsMu.Lock()
		s.hits[k]++
		s.bodies[k] = body
		s.hitsMu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(s.opts.Latency):
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := endpoint(r)
		s.hitsMu.Lock()
		queue := s.failures[k]
		var f *failure
		if len(queue) > 0 {
			f = &queue[0]
			s.failures[k] = queue[1:]
		}
		s.hitsMu.Unlock()

		if f != nil {
			s.errorResponse(w, r, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			s.errorResponse(w, r, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims := &AuthClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.opts.JWTSecret), nil
		}, jwt.WithTimeFunc(s.now))
		if err != nil {
			s.errorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, RoleCtxKey, claims.Role)
		ctx = context.WithValue(ctx, SubCtxKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(RoleCtxKey).(string)
			if !slices.Contains(roles, domain.Role(role)) {
				s.errorResponse(w, r, http.StatusForbidden, "Access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
