package entity

import (
	"bytes"
	"encoding/json"
)

// Optional хранит признак присутствия поля в PATCH запросе отдельно от значения:
//
//	Set=false             поле не передано
//	Set=true, Value=nil   поле явно очищено (null)
//	Set=true, Value!=nil  новое значение
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some создает Optional с заданным значением
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null создает явно очищенное Optional
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON вызывается только для ключей, присутствующих в JSON
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// Cleared - поле передано как null
func (o Optional[T]) Cleared() bool {
	return o.Set && o.Value == nil
}
