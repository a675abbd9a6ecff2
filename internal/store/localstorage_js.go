//go:build js && wasm

package store

import (
	"fmt"
	"strconv"
	"syscall/js"
)

// LocalStorage keeps counts in the browser's window.localStorage, so the
// variant history survives page reloads.
type LocalStorage struct {
	storage js.Value
}

func NewLocalStorage() (*LocalStorage, error) {
	s := js.Global().Get("localStorage")
	if s.IsUndefined() || s.IsNull() {
		return nil, fmt.Errorf("localStorage unavailable")
	}
	return &LocalStorage{storage: s}, nil
}

func (l *LocalStorage) Count(key string) (int, error) {
	v := l.storage.Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return 0, nil
	}
	n, err := strconv.Atoi(v.String())
	if err != nil {
		return 0, fmt.Errorf("localStorage %s: %w", key, err)
	}
	return n, nil
}

func (l *LocalStorage) SetCount(key string, n int) error {
	l.storage.Call("setItem", key, strconv.Itoa(n))
	return nil
}
