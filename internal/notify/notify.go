// Package notify 提供操作结果的提示（对应界面上的 toast）
package notify

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const FallbackMessage = "Something went wrong. Please try again."

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type userMessager interface {
	UserMessage() string
}

// Message 返回错误链上第一个可展示给用户的信息，没有时返回 fallback
func Message(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	if fallback == "" {
		return FallbackMessage
	}
	return fallback
}

type discard struct{}

func (discard) Success(string) {}
func (discard) Error(string)   {}

var Discard Notifier = discard{}

// Console 把提示写到终端
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[ok] %s\n", msg)
}

func (c *Console) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "[error] %s\n", msg)
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(l *slog.Logger) *Logger {
	return &Logger{logger: l}
}

func (l *Logger) Success(msg string) { l.logger.Info(msg) }
func (l *Logger) Error(msg string)   { l.logger.Warn(msg) }

// Recorder 记录所有提示，供测试断言
type Recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func (r *Recorder) Successes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}
