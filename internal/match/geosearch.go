package match

import (
	"errors"
	"sort"
)

var ErrInvalidPage = errors.New("page must be >= 1 and page size must be > 0")

// GeoHit is a pool index paired with its distance from the search center.
type GeoHit struct {
	Index      int
	DistanceKM float64
}

// Search filters a pool of optional coordinates to those within radiusKM of
// center, sorted ascending by distance, and returns the requested 1-based
// page plus the total filtered count. Entries with nil coordinates are
// silently excluded. Equal distances keep their input order.
func Search(pool []*Coordinate, center Coordinate, radiusKM float64, page, pageSize int) ([]GeoHit, int, error) {
	if page < 1 || pageSize <= 0 {
		return nil, 0, ErrInvalidPage
	}

	hits := make([]GeoHit, 0, len(pool))
	for i, coord := range pool {
		if coord == nil {
			continue
		}
		d := Distance(center, *coord)
		if d <= radiusKM {
			hits = append(hits, GeoHit{Index: i, DistanceKM: d})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].DistanceKM < hits[j].DistanceKM
	})

	return paginateHits(hits, page, pageSize)
}

// SearchAlongRoute is Search against a route corridor: an entry matches when
// its minimum distance to any route vertex is within radiusKM.
func SearchAlongRoute(pool []*Coordinate, route []Coordinate, radiusKM float64, page, pageSize int) ([]GeoHit, int, error) {
	if page < 1 || pageSize <= 0 {
		return nil, 0, ErrInvalidPage
	}
	if len(route) == 0 {
		return []GeoHit{}, 0, nil
	}

	hits := make([]GeoHit, 0, len(pool))
	for i, coord := range pool {
		if coord == nil {
			continue
		}
		best := Distance(route[0], *coord)
		for _, point := range route[1:] {
			if d := Distance(point, *coord); d < best {
				best = d
			}
		}
		if best <= radiusKM {
			hits = append(hits, GeoHit{Index: i, DistanceKM: best})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].DistanceKM < hits[j].DistanceKM
	})

	return paginateHits(hits, page, pageSize)
}

func paginateHits(hits []GeoHit, page, pageSize int) ([]GeoHit, int, error) {
	total := len(hits)
	start := (page - 1) * pageSize
	if start >= total {
		return []GeoHit{}, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return hits[start:end], total, nil
}
