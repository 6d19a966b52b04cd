package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a code may be from a known one and
// still be offered as a did-you-mean.
const maxSuggestDistance = 2

// VendorRegistry holds the known vendor codes loaded from the
// known-entities file.
type VendorRegistry struct {
	names map[string]string // code -> display name
}

// LoadVendors reads the known-entities file. Vendor entries may be a
// plain name string or an object with a "name" field.
func LoadVendors(path string) (*VendorRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc struct {
		Vendors map[string]json.RawMessage `json:"vendors"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	names := make(map[string]string, len(doc.Vendors))
	for code, raw := range doc.Vendors {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			var obj struct {
				Name string `json:"name"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return nil, fmt.Errorf("parsing vendor %q in %s: %w", code, path, err)
			}
			name = obj.Name
		}
		names[strings.ToUpper(code)] = name
	}
	return &VendorRegistry{names: names}, nil
}

// NewVendorRegistry builds a registry from a code -> name map.
// Useful in tests and for callers with their own source of codes.
func NewVendorRegistry(names map[string]string) *VendorRegistry {
	upper := make(map[string]string, len(names))
	for code, name := range names {
		upper[strings.ToUpper(code)] = name
	}
	return &VendorRegistry{names: upper}
}

// Known reports whether the code is registered. Matching is
// case-insensitive.
func (r *VendorRegistry) Known(code string) bool {
	_, ok := r.names[strings.ToUpper(code)]
	return ok
}

// Name returns the display name for a known code.
func (r *VendorRegistry) Name(code string) (string, bool) {
	name, ok := r.names[strings.ToUpper(code)]
	return name, ok
}

// Len reports how many codes are registered.
func (r *VendorRegistry) Len() int {
	return len(r.names)
}

// Suggest returns the closest known code within the edit-distance
// bound. Ties break lexicographically so suggestions are stable.
func (r *VendorRegistry) Suggest(code string) (string, bool) {
	code = strings.ToUpper(code)

	codes := make([]string, 0, len(r.names))
	for known := range r.names {
		codes = append(codes, known)
	}
	sort.Strings(codes)

	best, bestDist := "", maxSuggestDistance+1
	for _, known := range codes {
		if d := levenshtein.ComputeDistance(code, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	return best, best != ""
}
