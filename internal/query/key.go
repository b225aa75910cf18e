package query

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Key 是有序元组 [family, ...dims]；影响响应的每个筛选维度都必须出现在 Key 中
type Key []any

func NewKey(family string, dims ...any) Key {
	return append(Key{family}, dims...)
}

func (k Key) Family() string {
	if len(k) == 0 {
		return ""
	}
	s, _ := k[0].(string)
	return s
}

func (k Key) String() string {
	return "[" + strings.Join(k.parts(), ",") + "]"
}

func (k Key) Equal(other Key) bool {
	return len(k) == len(other) && k.HasPrefix(other)
}

// HasPrefix 按元素比较；空前缀匹配所有 Key
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	kp, pp := k.parts(), prefix.parts()
	for i := range pp {
		if kp[i] != pp[i] {
			return false
		}
	}
	return true
}

// parts 把每个元素编码成规范的 JSON，使 int 与 int64 等数值类型得到相同的编码
func (k Key) parts() []string {
	out := make([]string, len(k))
	for i, v := range k {
		out[i] = encodePart(v)
	}
	return out
}

func encodePart(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(data)
}
