package match

import (
	"errors"
	"sort"
	"time"
)

var ErrEmbeddingsMissing = errors.New("source entity has no embedding; run an embedding refresh first")

// Entity is the slice of a case or sighting the ranker needs: an identity,
// an embedding, and optional location/date for the advisory pre-filters.
type Entity struct {
	ID        string
	Embedding []float64
	Coord     *Coordinate
	Date      *time.Time
}

// RankOptions bound the candidate pool. Zero or negative values disable the
// corresponding pre-filter; TopK <= 0 means no truncation.
type RankOptions struct {
	RadiusKM     float64
	MaxDeltaDays float64
	TopK         int
}

// DistanceFunc is the embedding provider's distance between two vectors.
// Lower means more similar; the ranker treats the scale as bounded in [0, 2].
type DistanceFunc func(a, b []float64) (float64, error)

// SummaryFunc supplies the provider's human-readable summary for a ranked
// candidate. The ranker passes it through untouched.
type SummaryFunc func(candidateID string, similarity float64) string

// RankedMatch is one scored candidate.
type RankedMatch struct {
	CandidateID    string   `json:"candidate_id"`
	Similarity     float64  `json:"similarity_score"`
	DistanceKM     *float64 `json:"distance_km,omitempty"`
	TimeDeltaHours *float64 `json:"time_delta_hours,omitempty"`
	Summary        string   `json:"summary,omitempty"`
}

// Rank scores candidates against the source entity and returns them ordered
// by descending similarity, ties broken by ascending distance with missing
// distance last, truncated to TopK.
//
// Geographic and temporal filters are advisory: a candidate is dropped only
// when both sides carry the data and the bound is exceeded. A missing
// candidate embedding excludes that candidate; a missing source embedding is
// an error. An empty pool ranks to an empty slice.
func Rank(source Entity, candidates []Entity, opts RankOptions, dist DistanceFunc, summarize SummaryFunc) ([]RankedMatch, error) {
	if len(source.Embedding) == 0 {
		return nil, ErrEmbeddingsMissing
	}

	results := make([]RankedMatch, 0, len(candidates))
	for _, cand := range candidates {
		if len(cand.Embedding) == 0 {
			continue
		}

		var distanceKM *float64
		if source.Coord != nil && cand.Coord != nil {
			d := Distance(*source.Coord, *cand.Coord)
			if opts.RadiusKM > 0 && d > opts.RadiusKM {
				continue
			}
			distanceKM = &d
		}

		var deltaHours *float64
		if source.Date != nil && cand.Date != nil {
			delta := source.Date.Sub(*cand.Date).Hours()
			if delta < 0 {
				delta = -delta
			}
			if opts.MaxDeltaDays > 0 && delta > opts.MaxDeltaDays*24 {
				continue
			}
			deltaHours = &delta
		}

		embDistance, err := dist(source.Embedding, cand.Embedding)
		if err != nil {
			return nil, err
		}
		similarity := clamp01(1 - embDistance)

		result := RankedMatch{
			CandidateID:    cand.ID,
			Similarity:     similarity,
			DistanceKM:     distanceKM,
			TimeDeltaHours: deltaHours,
		}
		if summarize != nil {
			result.Summary = summarize(cand.ID, similarity)
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return lessDistance(results[i].DistanceKM, results[j].DistanceKM)
	})

	if opts.TopK > 0 && len(results) > opts.TopK {
		results = results[:opts.TopK]
	}
	return results, nil
}

func lessDistance(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
