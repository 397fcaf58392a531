// Package query turns request parameters into parameterized listing retrieval criteria.
//
// Only a fixed set of keys is recognized; each maps to one predicate and every
// present predicate is ANDed. Values are always bound as parameters.
package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Baaaki/car-marketplace/internal/apperror"
	"gorm.io/gorm"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceHigh SortOrder = "priceHigh"
	SortPriceLow  SortOrder = "priceLow"
)

const (
	keyMake     = "make"
	keyBodyType = "bodyType"
	keyPriceMin = "priceMin"
	keyPriceMax = "priceMax"
	keyFreeText = "freeText"
	keySortBy   = "sortBy"
)

// recognizedKeys maps every accepted query key, including the legacy
// frontend spellings, to its canonical filter key.
var recognizedKeys = map[string]string{
	"make":     keyMake,
	"brand":    keyMake,
	"bodyType": keyBodyType,
	"body":     keyBodyType,
	"priceMin": keyPriceMin,
	"minPrice": keyPriceMin,
	"priceMax": keyPriceMax,
	"maxPrice": keyPriceMax,
	"freeText": keyFreeText,
	"q":        keyFreeText,
	"sortBy":   keySortBy,
}

// ListingFilter is the validated set of listing search criteria.
// Zero values mean "not filtered".
type ListingFilter struct {
	Make     string
	BodyType string
	PriceMin *float64
	PriceMax *float64
	FreeText string
	SortBy   SortOrder
}

// ParseListingFilter validates raw query parameters. Unknown keys, repeated keys,
// non-numeric prices and unknown sort orders are all reported together.
func ParseListingFilter(values url.Values) (ListingFilter, error) {
	f := ListingFilter{SortBy: SortNewest}
	var violations []apperror.FieldError
	seen := make(map[string]string)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		canonical, ok := recognizedKeys[raw]
		if !ok {
			violations = append(violations, apperror.FieldError{
				Field:   raw,
				Message: fmt.Sprintf("%s is not a recognized filter", raw),
			})
			continue
		}

		vals := values[raw]
		if prev, dup := seen[canonical]; dup || len(vals) > 1 {
			if !dup {
				prev = raw
			}
			violations = append(violations, apperror.FieldError{
				Field:   canonical,
				Message: fmt.Sprintf("%s is specified more than once (%s)", canonical, prev),
			})
			continue
		}
		seen[canonical] = raw

		value := strings.TrimSpace(vals[0])
		if value == "" {
			continue
		}

		switch canonical {
		case keyMake:
			f.Make = value
		case keyBodyType:
			f.BodyType = value
		case keyFreeText:
			f.FreeText = value
		case keyPriceMin, keyPriceMax:
			price, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
				violations = append(violations, apperror.FieldError{
					Field:   canonical,
					Message: fmt.Sprintf("%s must be a non-negative number", canonical),
				})
				continue
			}
			if canonical == keyPriceMin {
				f.PriceMin = &price
			} else {
				f.PriceMax = &price
			}
		case keySortBy:
			switch SortOrder(value) {
			case SortNewest, SortPriceHigh, SortPriceLow:
				f.SortBy = SortOrder(value)
			default:
				violations = append(violations, apperror.FieldError{
					Field:   keySortBy,
					Message: "sortBy must be one of: newest, priceHigh, priceLow",
				})
			}
		}
	}

	if len(violations) > 0 {
		return ListingFilter{}, apperror.Validation(violations...)
	}
	return f, nil
}

// Scope applies the filter predicates and ordering to a listings query.
func (f ListingFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.Make != "" {
		db = db.Where("make = ?", f.Make)
	}
	if f.BodyType != "" {
		db = db.Where("body_type = ?", f.BodyType)
	}
	if f.PriceMin != nil {
		db = db.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		db = db.Where("price <= ?", *f.PriceMax)
	}
	if f.FreeText != "" {
		pattern := "%" + escapeLike(strings.ToLower(f.FreeText)) + "%"
		db = db.Where(
			`(LOWER(make) LIKE ? ESCAPE '\' OR LOWER(model) LIKE ? ESCAPE '\' OR LOWER(body_type) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}

	switch f.SortBy {
	case SortPriceHigh:
		db = db.Order("price DESC").Order("id DESC")
	case SortPriceLow:
		db = db.Order("price ASC").Order("id DESC")
	default:
		// ids are monotonic, so they stand in for creation time
		db = db.Order("id DESC")
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
