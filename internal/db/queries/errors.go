package queries

import "errors"

// ErrNotFound возвращается, когда запись не найдена
var ErrNotFound = errors.New("record not found")
