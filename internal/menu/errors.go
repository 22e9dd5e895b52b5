package menu

import "errors"

var ErrNotFound = errors.New("menu item not found")
