package records

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLayerID = errors.New("invalid layer id")

// LayerKey is a layer identifier split according to the data naming
// convention:
//
//	layer-id = product "-" category *( "-" segment )
//
// e.g. "locationmap-admn-ad0-ln-s0-locationmaps" has product "locationmap",
// category "admn" and remainder "ad0-ln-s0-locationmaps".
type LayerKey struct {
	Product   string
	Category  string
	Remainder string
}

func (k LayerKey) String() string {
	parts := []string{k.Product, k.Category}
	if k.Remainder != "" {
		parts = append(parts, k.Remainder)
	}
	return strings.Join(parts, "-")
}

// ParseLayerID parses a layer identifier into its structured key.
func ParseLayerID(id string) (LayerKey, error) {
	parts := strings.Split(id, "-")
	if len(parts) < 2 {
		return LayerKey{}, fmt.Errorf("%w %q: expected <product>-<category>[-...]", ErrInvalidLayerID, id)
	}
	for i, p := range parts {
		if p == "" {
			return LayerKey{}, fmt.Errorf("%w %q: empty segment at position %d", ErrInvalidLayerID, id, i)
		}
	}
	category := parts[1]
	if !isCategoryCode(category) {
		return LayerKey{}, fmt.Errorf("%w %q: category %q must be lowercase alphanumeric", ErrInvalidLayerID, id, category)
	}
	return LayerKey{
		Product:   parts[0],
		Category:  category,
		Remainder: strings.Join(parts[2:], "-"),
	}, nil
}

// LayerCategory returns just the category code of a layer identifier.
func LayerCategory(id string) (string, error) {
	k, err := ParseLayerID(id)
	if err != nil {
		return "", err
	}
	return k.Category, nil
}

func isCategoryCode(s string) bool {
	for _, c := range s {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return s != ""
}
