package domain

import "encoding/json"

// Optional 区分"字段未出现"、"字段为null"和"字段有值"三种情况，
// 用于partial update：只应用Set为true的字段
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some 构造有值的Optional（测试和service内部使用）
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null 构造显式null的Optional（表示清除字段）
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Valid: false}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero
		return nil
	}
	o.Valid = true
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr Valid时返回值指针，否则返回nil（用于写入可空列）
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
