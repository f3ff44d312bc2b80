package services

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidQuantity   = errors.New("invalid quantity value")
	ErrDuplicate         = errors.New("item code or name already exists")
	ErrItemNotFound      = errors.New("item not found")
	ErrNoData            = errors.New("no data found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
