package inventory

import "errors"

var (
	ErrItemNotFound      = errors.New("menu item not found")
	ErrInvalidAdjustment = errors.New("invalid stock adjustment")
)
