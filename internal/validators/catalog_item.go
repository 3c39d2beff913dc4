package validators

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/MKhiriev/drpg-sync/models"
)

// Field name constants used to restrict validation of a catalog item to a
// subset of its fields.
const (
	// FieldID targets the stable item identifier.
	FieldID = "id"

	// FieldProductName targets the product display name.
	FieldProductName = "product_name"

	// FieldFileName targets the remote file name.
	FieldFileName = "file_name"

	// FieldSize targets the declared size in bytes.
	FieldSize = "size"

	// FieldUniqueID applies to listings only: every id must appear once.
	FieldUniqueID = "unique_id"
)

// ItemErrors maps the index of every invalid item in a listing to the
// reason it was rejected.
type ItemErrors map[int]error

func (e ItemErrors) Error() string {
	indexes := make([]int, 0, len(e))
	for i := range e {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	parts := make([]string, 0, len(indexes))
	for _, i := range indexes {
		parts = append(parts, fmt.Sprintf("index %d: %v", i, e[i]))
	}
	return fmt.Sprintf("%d invalid catalog items: %s", len(e), strings.Join(parts, "; "))
}

// CatalogItemValidator checks catalog items before they are planned.
//
// A single models.CatalogItem is checked field by field. A listing
// ([]models.CatalogItem) additionally requires unique ids: the first item
// with a given id is kept and every later one is rejected.
type CatalogItemValidator struct {
}

// NewCatalogItemValidator constructs a CatalogItemValidator and returns it
// as the Validator interface.
func NewCatalogItemValidator() Validator {
	return &CatalogItemValidator{}
}

func (v *CatalogItemValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.CatalogItem:
		return v.validateItem(ctx, value, fields...)
	case *models.CatalogItem:
		return v.validateItem(ctx, *value, fields...)

	case []models.CatalogItem:
		return v.validateListing(ctx, value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *CatalogItemValidator) validateItem(ctx context.Context, item models.CatalogItem, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldID, FieldProductName, FieldFileName, FieldSize}
	}

	for _, f := range fields {
		switch f {
		case FieldID:
			if strings.TrimSpace(item.ID) == "" {
				return ErrEmptyItemID
			}
		case FieldProductName:
			if strings.TrimSpace(item.ProductName) == "" {
				return ErrEmptyProductName
			}
		case FieldFileName:
			if strings.TrimSpace(item.FileName) == "" {
				return ErrEmptyFileName
			}
		case FieldSize:
			if item.Size < 0 {
				return ErrNegativeSize
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateListing returns nil or ItemErrors.
func (v *CatalogItemValidator) validateListing(ctx context.Context, items []models.CatalogItem, fields ...string) error {
	checkUnique := len(fields) == 0
	itemFields := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == FieldUniqueID {
			checkUnique = true
			continue
		}
		itemFields = append(itemFields, f)
	}
	// FieldUniqueID alone skips the per-item checks
	checkItems := len(fields) == 0 || len(itemFields) > 0

	failures := make(ItemErrors)
	seen := make(map[string]int, len(items))
	for i, item := range items {
		if checkItems {
			if err := v.validateItem(ctx, item, itemFields...); err != nil {
				failures[i] = err
				continue
			}
		}
		if !checkUnique {
			continue
		}
		if first, ok := seen[item.ID]; ok {
			failures[i] = fmt.Errorf("%w: %q already listed at index %d", ErrDuplicateItemID, item.ID, first)
			continue
		}
		seen[item.ID] = i
	}

	if len(failures) == 0 {
		return nil
	}
	return failures
}
