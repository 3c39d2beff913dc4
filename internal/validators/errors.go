package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyItemID      = errors.New("item id is required")
	ErrEmptyProductName = errors.New("product name is required")
	ErrEmptyFileName    = errors.New("file name is required")
	ErrNegativeSize     = errors.New("size cannot be negative")
	ErrDuplicateItemID  = errors.New("duplicate item id")
)
