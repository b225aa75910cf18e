package form

import (
	"context"

	"github.com/timetrak/client/internal/notify"
)

// Submit 先校验表单，失败时显示第一条校验信息并返回，不调用 fn
func Submit[F, T any](ctx context.Context, v *Validator, n notify.Notifier, f F, fn func(context.Context, F) (T, error)) (T, error) {
	var zero T
	if err := v.Validate(f); err != nil {
		n.Error(notify.Message(err, ""))
		return zero, err
	}
	return fn(ctx, f)
}
