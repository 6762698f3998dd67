// Package geo provides zip-code proximity implementations for the matching
// selector. Distance precision is this package's concern; the selector only
// consumes the resulting zip sets.
package geo

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// TableProximity answers Nearby from a preloaded neighbor table. Each table
// entry records the distance in miles between a zip and one of its
// neighbors; Nearby returns the neighbors within the requested radius.
type TableProximity struct {
	neighbors map[string][]neighbor
}

type neighbor struct {
	zipcode string
	miles   int
}

// LoadTable reads a neighbor table from a CSV file with rows of the form
// zipcode,neighbor,miles. Rows with malformed distances are rejected.
func LoadTable(path string) (*TableProximity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open zip table %q: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable parses a neighbor table from a reader. See LoadTable for the
// expected format.
func ReadTable(r io.Reader) (*TableProximity, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	table := &TableProximity{neighbors: make(map[string][]neighbor)}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read zip table: %w", err)
		}
		miles, err := strconv.Atoi(rec[2])
		if err != nil || miles < 0 {
			return nil, fmt.Errorf("zip table line %d: bad distance %q", line, rec[2])
		}
		table.neighbors[rec[0]] = append(table.neighbors[rec[0]], neighbor{zipcode: rec[1], miles: miles})
	}
	return table, nil
}

// Nearby returns the zips recorded within radius miles of zipcode. Unknown
// zips yield an empty set, not an error.
func (t *TableProximity) Nearby(_ context.Context, radius int, zipcode string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, n := range t.neighbors[zipcode] {
		if n.miles <= radius {
			out[n.zipcode] = struct{}{}
		}
	}
	return out, nil
}

// PrefixProximity is a naive fallback used when no neighbor table is
// configured: it treats numerically adjacent zip codes as nearby, one zip
// number per radius unit in each direction. Adjacent zip numbers are usually
// assigned to adjacent areas, which is good enough for development setups.
type PrefixProximity struct{}

// Nearby returns the numeric window of zip codes around zipcode.
func (PrefixProximity) Nearby(_ context.Context, radius int, zipcode string) (map[string]struct{}, error) {
	base, err := strconv.Atoi(zipcode)
	if err != nil {
		return nil, fmt.Errorf("zipcode %q is not numeric: %w", zipcode, err)
	}
	out := make(map[string]struct{}, 2*radius)
	for delta := -radius; delta <= radius; delta++ {
		z := base + delta
		if z < 0 || z > 99999 {
			continue
		}
		out[fmt.Sprintf("%05d", z)] = struct{}{}
	}
	return out, nil
}
