package match

import (
	"errors"
	"testing"
)

func coordPtr(lat, lon float64) *Coordinate {
	return &Coordinate{Lat: lat, Lon: lon}
}

// Pool around Milan: three entries within ~2 km of the centre, two roughly
// 50 km out, one not geocoded.
func milanPool() []*Coordinate {
	return []*Coordinate{
		coordPtr(45.4654, 9.1859), // centre itself
		coordPtr(45.478, 9.19),    // ~1.4 km
		coordPtr(45.47, 9.2),      // ~1.2 km
		coordPtr(45.87, 9.4),      // ~48 km
		coordPtr(45.05, 9.35),     // ~48 km
		nil,
	}
}

func TestSearchRadius(t *testing.T) {
	center := Coordinate{Lat: 45.4654, Lon: 9.1859}
	hits, total, err := Search(milanPool(), center, 5, 1, 20)
	if err != nil {
		t.Fatalf("Search returned error %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d; want 3", total)
	}
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d; want 3", len(hits))
	}
	for i, hit := range hits {
		if hit.DistanceKM > 5 {
			t.Errorf("hit %d distance %.2f exceeds radius", i, hit.DistanceKM)
		}
		if i > 0 && hits[i-1].DistanceKM > hit.DistanceKM {
			t.Errorf("hits not sorted ascending at %d", i)
		}
	}
	if hits[0].Index != 0 {
		t.Errorf("closest hit index = %d; want 0 (the centre)", hits[0].Index)
	}
}

func TestSearchStableTies(t *testing.T) {
	// Two entries at the same location must keep input order.
	pool := []*Coordinate{
		coordPtr(45.478, 9.19),
		coordPtr(45.478, 9.19),
		coordPtr(45.4654, 9.1859),
	}
	center := Coordinate{Lat: 45.4654, Lon: 9.1859}
	hits, _, err := Search(pool, center, 10, 1, 10)
	if err != nil {
		t.Fatalf("Search returned error %v", err)
	}
	if hits[1].Index != 0 || hits[2].Index != 1 {
		t.Errorf("equal-distance entries reordered: %v", hits)
	}
}

func TestSearchPagination(t *testing.T) {
	pool := milanPool()
	center := Coordinate{Lat: 45.4654, Lon: 9.1859}

	seen := map[int]bool{}
	var total int
	for page := 1; ; page++ {
		hits, pageTotal, err := Search(pool, center, 100, page, 2)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if page == 1 {
			total = pageTotal
		} else if pageTotal != total {
			t.Errorf("total changed between pages: %d vs %d", pageTotal, total)
		}
		if len(hits) == 0 {
			break
		}
		if len(hits) > 2 {
			t.Errorf("page %d returned %d items; page size is 2", page, len(hits))
		}
		for _, hit := range hits {
			if seen[hit.Index] {
				t.Errorf("index %d returned on more than one page", hit.Index)
			}
			seen[hit.Index] = true
		}
	}
	if len(seen) != total {
		t.Errorf("concatenated pages yielded %d items; total reported %d", len(seen), total)
	}
}

func TestSearchInvalidPaging(t *testing.T) {
	center := Coordinate{Lat: 0, Lon: 0}
	cases := []struct{ page, pageSize int }{
		{0, 10},
		{-1, 10},
		{1, 0},
		{1, -5},
	}
	for _, tc := range cases {
		if _, _, err := Search(nil, center, 10, tc.page, tc.pageSize); !errors.Is(err, ErrInvalidPage) {
			t.Errorf("Search(page=%d, pageSize=%d) err = %v; want ErrInvalidPage", tc.page, tc.pageSize, err)
		}
	}
}

func TestSearchAlongRoute(t *testing.T) {
	// Route from Milan towards Bergamo; third pool entry sits far south.
	route := []Coordinate{
		{45.4654, 9.1859},
		{45.58, 9.4},
		{45.6983, 9.6773},
	}
	pool := []*Coordinate{
		coordPtr(45.59, 9.41), // near the middle of the route
		coordPtr(45.70, 9.68), // near the end
		coordPtr(44.40, 8.95), // Genoa, ~120 km off route
		nil,
	}
	hits, total, err := SearchAlongRoute(pool, route, 10, 1, 10)
	if err != nil {
		t.Fatalf("SearchAlongRoute returned error %v", err)
	}
	if total != 2 || len(hits) != 2 {
		t.Fatalf("total = %d, len = %d; want 2, 2", total, len(hits))
	}
	for _, hit := range hits {
		if hit.Index == 2 {
			t.Error("off-route entry included")
		}
	}
}

func TestSearchAlongRouteEmptyRoute(t *testing.T) {
	hits, total, err := SearchAlongRoute(milanPool(), nil, 10, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if total != 0 || len(hits) != 0 {
		t.Errorf("empty route should match nothing, got %d/%d", len(hits), total)
	}
}
