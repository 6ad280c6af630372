package match

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

// vecDistance is a provider-style distance: 1 - cosine similarity, bounded
// in [0, 2] for arbitrary vectors.
func vecDistance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("dimension mismatch")
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 2, nil
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb)), nil
}

func dayPtr(t time.Time) *time.Time { return &t }

func TestRankEmptyPool(t *testing.T) {
	source := Entity{ID: "C1", Embedding: []float64{1, 0}}
	results, err := Rank(source, nil, RankOptions{TopK: 5}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
}

func TestRankMissingSourceEmbedding(t *testing.T) {
	source := Entity{ID: "C1"}
	_, err := Rank(source, []Entity{{ID: "S1", Embedding: []float64{1, 0}}}, RankOptions{}, vecDistance, nil)
	if !errors.Is(err, ErrEmbeddingsMissing) {
		t.Errorf("err = %v; want ErrEmbeddingsMissing", err)
	}
}

func TestRankOrdering(t *testing.T) {
	source := Entity{ID: "C1", Embedding: []float64{1, 0}}
	candidates := []Entity{
		{ID: "far", Embedding: []float64{0, 1}},     // orthogonal, similarity 0
		{ID: "close", Embedding: []float64{1, 0.1}}, // near identical
		{ID: "mid", Embedding: []float64{1, 1}},     // 45 degrees
	}

	results, err := Rank(source, candidates, RankOptions{}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	got := []string{results[0].CandidateID, results[1].CandidateID, results[2].CandidateID}
	want := []string{"close", "mid", "far"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v; want %v", got, want)
	}
	for _, r := range results {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("similarity %v outside [0,1]", r.Similarity)
		}
	}
}

func TestRankDeterminism(t *testing.T) {
	source := Entity{ID: "C1", Embedding: []float64{0.3, 0.7, 0.1}}
	candidates := []Entity{
		{ID: "a", Embedding: []float64{0.3, 0.7, 0.2}},
		{ID: "b", Embedding: []float64{0.1, 0.9, 0.1}},
		{ID: "c", Embedding: []float64{0.5, 0.5, 0.5}},
	}
	first, err := Rank(source, candidates, RankOptions{TopK: 3}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Rank(source, candidates, RankOptions{TopK: 3}, vecDistance, nil)
		if err != nil {
			t.Fatalf("Rank returned error %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("rank order changed between calls: %v vs %v", first, again)
		}
	}
}

func TestRankTieBreakByDistance(t *testing.T) {
	milan := Coordinate{Lat: 45.4654, Lon: 9.1859}
	nearby := Coordinate{Lat: 45.47, Lon: 9.2}
	faraway := Coordinate{Lat: 45.87, Lon: 9.4}

	source := Entity{ID: "C1", Embedding: []float64{1, 0}, Coord: &milan}
	// Identical embeddings force a similarity tie.
	candidates := []Entity{
		{ID: "no-coords", Embedding: []float64{1, 0}},
		{ID: "far", Embedding: []float64{1, 0}, Coord: &faraway},
		{ID: "near", Embedding: []float64{1, 0}, Coord: &nearby},
	}

	results, err := Rank(source, candidates, RankOptions{}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	got := []string{results[0].CandidateID, results[1].CandidateID, results[2].CandidateID}
	want := []string{"near", "far", "no-coords"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie-break order = %v; want %v", got, want)
	}
	if results[2].DistanceKM != nil {
		t.Error("candidate without coordinates should carry nil distance")
	}
}

func TestRankAdvisoryFilters(t *testing.T) {
	milan := Coordinate{Lat: 45.4654, Lon: 9.1859}
	faraway := Coordinate{Lat: 48.8566, Lon: 2.3522} // Paris, ~640 km
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	source := Entity{ID: "C1", Embedding: []float64{1, 0}, Coord: &milan, Date: dayPtr(base)}
	candidates := []Entity{
		{ID: "in-range", Embedding: []float64{1, 0}, Coord: &Coordinate{45.47, 9.2}, Date: dayPtr(base.AddDate(0, 0, 2))},
		{ID: "too-far", Embedding: []float64{1, 0}, Coord: &faraway, Date: dayPtr(base)},
		{ID: "too-old", Embedding: []float64{1, 0}, Coord: &Coordinate{45.47, 9.2}, Date: dayPtr(base.AddDate(0, 0, -40))},
		{ID: "no-geo-no-date", Embedding: []float64{1, 0}},
		{ID: "no-embedding", Coord: &Coordinate{45.47, 9.2}, Date: dayPtr(base)},
	}

	results, err := Rank(source, candidates, RankOptions{RadiusKM: 50, MaxDeltaDays: 30}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}

	ids := map[string]bool{}
	for _, r := range results {
		ids[r.CandidateID] = true
	}
	if !ids["in-range"] {
		t.Error("in-range candidate excluded")
	}
	if !ids["no-geo-no-date"] {
		t.Error("candidate lacking coordinates and date must not be excluded by advisory filters")
	}
	if ids["too-far"] || ids["too-old"] {
		t.Error("advisory filters did not drop out-of-bound candidates")
	}
	if ids["no-embedding"] {
		t.Error("candidate without embedding must be skipped")
	}
}

func TestRankTopK(t *testing.T) {
	source := Entity{ID: "C1", Embedding: []float64{1, 0}}
	var candidates []Entity
	for i := 0; i < 10; i++ {
		candidates = append(candidates, Entity{ID: string(rune('a' + i)), Embedding: []float64{1, float64(i) / 10}})
	}
	results, err := Rank(source, candidates, RankOptions{TopK: 3}, vecDistance, nil)
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len = %d; want 3", len(results))
	}
	if results[0].CandidateID != "a" {
		t.Errorf("best candidate = %s; want a", results[0].CandidateID)
	}
}

func TestRankSummaryPassthrough(t *testing.T) {
	source := Entity{ID: "C1", Embedding: []float64{1, 0}}
	candidates := []Entity{{ID: "S1", Embedding: []float64{1, 0}}}
	results, err := Rank(source, candidates, RankOptions{}, vecDistance, func(id string, sim float64) string {
		return "summary for " + id
	})
	if err != nil {
		t.Fatalf("Rank returned error %v", err)
	}
	if results[0].Summary != "summary for S1" {
		t.Errorf("summary = %q", results[0].Summary)
	}
}
