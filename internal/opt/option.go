// Package opt содержит тип Option для частичных обновлений: он отличает
// «поле не передано» от «поле передано» (в том числе явным null).
package opt

import (
	"bytes"
	"encoding/json"
)

// Option хранит значение и признак его наличия.
// Для полей, которые можно явно очистить, используйте Option[*T]:
// JSON null даёт установленный Option с nil-значением.
type Option[T any] struct {
	set   bool
	value T
}

// Some возвращает установленный Option.
func Some[T any](v T) Option[T] {
	return Option[T]{set: true, value: v}
}

// None возвращает пустой Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSet сообщает, было ли поле передано.
func (o Option[T]) IsSet() bool {
	return o.set
}

// Get возвращает значение и признак наличия.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.set
}

// Value возвращает значение (нулевое, если поле не передано).
func (o Option[T]) Value() T {
	return o.value
}

// OrElse возвращает значение либо def, если поле не передано.
func (o Option[T]) OrElse(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// UnmarshalJSON вызывается только для присутствующих ключей, включая null.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		return nil
	}
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON сериализует значение; пустой Option даёт null.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
