package query

import (
	"context"
	"errors"

	"github.com/timetrak/client/internal/notify"
)

var ErrMutationInFlight = errors.New("the same operation is already in progress")

// Mutation 描述一次写操作以及成功后需要失效的 Key 前缀。写操作不会重试。
// Success 根据返回值生成成功提示，设置后取代 SuccessMessage
type Mutation[T any] struct {
	Name           string
	Fn             func(ctx context.Context) (T, error)
	Invalidates    []Key
	SuccessMessage string
	Success        func(T) string
	ErrorMessage   string

	// Exclusive 为 true 时，同名操作在途期间的再次提交直接失败
	Exclusive bool
}

func Mutate[T any](ctx context.Context, c *Cache, m Mutation[T]) (T, error) {
	var zero T

	if m.Exclusive {
		if !c.beginMutation(m.Name) {
			c.notifier.Error(ErrMutationInFlight.Error())
			return zero, ErrMutationInFlight
		}
		defer c.endMutation(m.Name)
	}

	out, err := m.Fn(ctx)
	if err != nil {
		c.logger.Debug("mutation failed", "mutation", m.Name, "error", err)
		c.notifier.Error(notify.Message(err, m.ErrorMessage))
		return zero, err
	}

	if len(m.Invalidates) > 0 {
		c.Invalidate(m.Invalidates...)
	}
	msg := m.SuccessMessage
	if m.Success != nil {
		msg = m.Success(out)
	}
	if msg != "" {
		c.notifier.Success(msg)
	}
	return out, nil
}

func (c *Cache) beginMutation(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mutating[name] {
		return false
	}
	c.mutating[name] = true
	return true
}

func (c *Cache) endMutation(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.mutating, name)
}
