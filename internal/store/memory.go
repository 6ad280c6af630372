package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/match"
	"github.com/bwise1/findlink/internal/model"
	"github.com/google/uuid"
)

// MemoryStore is the in-process DataService backend. All state lives behind
// one RWMutex; read-heavy operations (listing, searching, ranking) take the
// read lock and never mutate.
type MemoryStore struct {
	mu       sync.RWMutex
	provider embed.Provider

	cases     map[uuid.UUID]model.Case
	sightings map[uuid.UUID]model.Sighting
	links     map[uuid.UUID]model.MatchLink
	evidence  map[uuid.UUID][]model.VideoAnalysisResult
}

func NewMemoryStore(provider embed.Provider) *MemoryStore {
	return &MemoryStore{
		provider:  provider,
		cases:     make(map[uuid.UUID]model.Case),
		sightings: make(map[uuid.UUID]model.Sighting),
		links:     make(map[uuid.UUID]model.MatchLink),
		evidence:  make(map[uuid.UUID][]model.VideoAnalysisResult),
	}
}

// --- cases ---

func (ms *MemoryStore) GetCases(_ context.Context, filter model.CaseFilter, page, pageSize int) ([]model.Case, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var filtered []model.Case
	for _, c := range ms.cases {
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && c.Priority != filter.Priority {
			continue
		}
		filtered = append(filtered, c)
	}
	sortCases(filtered)

	items, total := pageSliceCases(filtered, page, pageSize)
	return items, total, nil
}

func (ms *MemoryStore) GetCaseByID(_ context.Context, id string) (model.Case, error) {
	caseID, err := uuid.Parse(id)
	if err != nil {
		return model.Case{}, ErrCaseNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	c, ok := ms.cases[caseID]
	if !ok {
		return model.Case{}, ErrCaseNotFound
	}
	return c, nil
}

func (ms *MemoryStore) CreateCase(_ context.Context, c model.Case) (string, error) {
	if err := c.LastSeen.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Status == "" {
		c.Status = model.CaseStatusActive
	}
	ms.cases[c.ID] = c
	return c.ID.String(), nil
}

func (ms *MemoryStore) UpdateCase(_ context.Context, c model.Case) (bool, error) {
	if err := c.LastSeen.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	existing, ok := ms.cases[c.ID]
	if !ok {
		return false, nil
	}
	c.CreatedAt = existing.CreatedAt
	c.CreatedBy = existing.CreatedBy
	c.UpdatedAt = time.Now().UTC()
	ms.cases[c.ID] = c
	return true, nil
}

func (ms *MemoryStore) SearchCases(_ context.Context, query, field string, page, pageSize int) ([]model.Case, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var filtered []model.Case
	for _, c := range ms.cases {
		if caseMatches(c, q, field) {
			filtered = append(filtered, c)
		}
	}
	sortCases(filtered)

	items, total := pageSliceCases(filtered, page, pageSize)
	return items, total, nil
}

func (ms *MemoryStore) SearchCasesByLocation(_ context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ordered := ms.orderedCases()
	pool := make([]*match.Coordinate, len(ordered))
	for i, c := range ordered {
		pool[i] = locationCoord(c.LastSeen)
	}

	hits, total, err := match.Search(pool, match.Coordinate{Lat: lat, Lon: lon}, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.CaseDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.CaseDistance{Case: ordered[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

func (ms *MemoryStore) SearchCasesAlongRoute(_ context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ordered := ms.orderedCases()
	pool := make([]*match.Coordinate, len(ordered))
	for i, c := range ordered {
		pool[i] = locationCoord(c.LastSeen)
	}

	hits, total, err := match.SearchAlongRoute(pool, route, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.CaseDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.CaseDistance{Case: ordered[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

// --- sightings ---

func (ms *MemoryStore) GetSightings(_ context.Context, filter model.SightingFilter, page, pageSize int) ([]model.Sighting, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var filtered []model.Sighting
	for _, s := range ms.sightings {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.ConfidenceLevel != "" && s.ConfidenceLevel != filter.ConfidenceLevel {
			continue
		}
		if filter.SourceType != "" && s.SourceType != filter.SourceType {
			continue
		}
		filtered = append(filtered, s)
	}
	sortSightings(filtered)

	items, total := pageSliceSightings(filtered, page, pageSize)
	return items, total, nil
}

func (ms *MemoryStore) GetSightingByID(_ context.Context, id string) (model.Sighting, error) {
	sightingID, err := uuid.Parse(id)
	if err != nil {
		return model.Sighting{}, ErrSightingNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sightings[sightingID]
	if !ok {
		return model.Sighting{}, ErrSightingNotFound
	}
	return s, nil
}

func (ms *MemoryStore) CreateSighting(_ context.Context, s model.Sighting) (string, error) {
	if err := s.Sighted.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = model.SightingStatusNew
	}
	s.Verified = false
	ms.sightings[s.ID] = s
	return s.ID.String(), nil
}

func (ms *MemoryStore) UpdateSighting(_ context.Context, s model.Sighting) (bool, error) {
	if err := s.Sighted.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	existing, ok := ms.sightings[s.ID]
	if !ok {
		return false, nil
	}
	s.CreatedAt = existing.CreatedAt
	s.ReportedBy = existing.ReportedBy
	s.Status = existing.Status
	s.Verified = existing.Verified
	s.VerifiedBy = existing.VerifiedBy
	s.UpdatedAt = time.Now().UTC()
	ms.sightings[s.ID] = s
	return true, nil
}

func (ms *MemoryStore) SearchSightings(_ context.Context, query, field string, page, pageSize int) ([]model.Sighting, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var filtered []model.Sighting
	for _, s := range ms.sightings {
		if sightingMatches(s, q, field) {
			filtered = append(filtered, s)
		}
	}
	sortSightings(filtered)

	items, total := pageSliceSightings(filtered, page, pageSize)
	return items, total, nil
}

func (ms *MemoryStore) SearchSightingsByLocation(_ context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ordered := ms.orderedSightings()
	pool := make([]*match.Coordinate, len(ordered))
	for i, s := range ordered {
		pool[i] = locationCoord(s.Sighted)
	}

	hits, total, err := match.Search(pool, match.Coordinate{Lat: lat, Lon: lon}, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.SightingDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.SightingDistance{Sighting: ordered[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

func (ms *MemoryStore) SearchSightingsAlongRoute(_ context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	ordered := ms.orderedSightings()
	pool := make([]*match.Coordinate, len(ordered))
	for i, s := range ordered {
		pool[i] = locationCoord(s.Sighted)
	}

	hits, total, err := match.SearchAlongRoute(pool, route, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.SightingDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.SightingDistance{Sighting: ordered[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

func (ms *MemoryStore) VerifySighting(_ context.Context, id, verifiedBy string) (model.Sighting, error) {
	return ms.resolveSighting(id, model.SightingStatusVerified, verifiedBy)
}

func (ms *MemoryStore) RejectSighting(_ context.Context, id string) (model.Sighting, error) {
	return ms.resolveSighting(id, model.SightingStatusFalsePositive, "")
}

func (ms *MemoryStore) resolveSighting(id, status, verifiedBy string) (model.Sighting, error) {
	sightingID, err := uuid.Parse(id)
	if err != nil {
		return model.Sighting{}, ErrSightingNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sightings[sightingID]
	if !ok {
		return model.Sighting{}, ErrSightingNotFound
	}
	if s.Status == model.SightingStatusVerified || s.Status == model.SightingStatusFalsePositive {
		return model.Sighting{}, ErrSightingFinal
	}

	s.Status = status
	s.Verified = status == model.SightingStatusVerified
	s.VerifiedBy = verifiedBy
	s.UpdatedAt = time.Now().UTC()
	ms.sightings[sightingID] = s
	return s, nil
}

// --- embeddings and ranking ---

func (ms *MemoryStore) UpdateCaseEmbeddings(ctx context.Context) (embed.Result, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	modified := 0
	for id, c := range ms.cases {
		if c.HasEmbedding() {
			continue
		}
		vector, err := ms.provider.Embed(ctx, c.EmbeddingText())
		if err != nil {
			return embed.Result{Success: false, RowsModified: modified, Message: err.Error()}, err
		}
		c.Embedding = vector
		ms.cases[id] = c
		modified++
	}
	return embed.Result{Success: true, RowsModified: modified, Message: fmt.Sprintf("embedded %d cases", modified)}, nil
}

func (ms *MemoryStore) UpdateSightingEmbeddings(ctx context.Context) (embed.Result, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	modified := 0
	for id, s := range ms.sightings {
		if s.HasEmbedding() {
			continue
		}
		vector, err := ms.provider.Embed(ctx, s.EmbeddingText())
		if err != nil {
			return embed.Result{Success: false, RowsModified: modified, Message: err.Error()}, err
		}
		s.Embedding = vector
		ms.sightings[id] = s
		modified++
	}
	return embed.Result{Success: true, RowsModified: modified, Message: fmt.Sprintf("embedded %d sightings", modified)}, nil
}

func (ms *MemoryStore) FindSimilarSightings(_ context.Context, caseID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	c, ok := ms.cases[id]
	if !ok {
		return nil, ErrCaseNotFound
	}

	source := caseEntity(c)
	var candidates []match.Entity
	for _, s := range ms.orderedSightings() {
		// Rejected observations are not suggested again.
		if s.Status == model.SightingStatusFalsePositive {
			continue
		}
		candidates = append(candidates, sightingEntity(s))
	}

	opts := match.RankOptions{RadiusKM: radiusKM, MaxDeltaDays: deltaDays, TopK: topK}
	return match.Rank(source, candidates, opts, ms.provider.Distance, ms.provider.Summary)
}

func (ms *MemoryStore) FindSimilarCases(_ context.Context, sightingID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error) {
	id, err := uuid.Parse(sightingID)
	if err != nil {
		return nil, ErrSightingNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sightings[id]
	if !ok {
		return nil, ErrSightingNotFound
	}

	source := sightingEntity(s)
	var candidates []match.Entity
	for _, c := range ms.orderedCases() {
		// Only open cases are match targets.
		if c.Status != model.CaseStatusActive {
			continue
		}
		candidates = append(candidates, caseEntity(c))
	}

	opts := match.RankOptions{RadiusKM: radiusKM, MaxDeltaDays: deltaDays, TopK: topK}
	return match.Rank(source, candidates, opts, ms.provider.Distance, ms.provider.Summary)
}

// --- match links ---

func (ms *MemoryStore) GetCaseSightings(_ context.Context, caseID string) ([]model.CaseSighting, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.cases[id]; !ok {
		return nil, ErrCaseNotFound
	}

	var results []model.CaseSighting
	for _, link := range ms.links {
		if link.CaseID != id || link.Status == model.MatchStatusRejected {
			continue
		}
		sighting, ok := ms.sightings[link.SightingID]
		if !ok {
			continue
		}
		results = append(results, model.CaseSighting{Link: link, Sighting: sighting})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Link.MatchConfidence > results[j].Link.MatchConfidence
	})
	return results, nil
}

func (ms *MemoryStore) LinkSightingToCase(_ context.Context, req model.LinkRequest) (model.MatchLink, error) {
	if req.Confidence < 0 || req.Confidence > 1 {
		return model.MatchLink{}, ErrInvalidConfidence
	}
	sightingID, err := uuid.Parse(req.SightingID)
	if err != nil {
		return model.MatchLink{}, ErrSightingNotFound
	}
	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		return model.MatchLink{}, ErrCaseNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s, ok := ms.sightings[sightingID]
	if !ok {
		return model.MatchLink{}, ErrSightingNotFound
	}
	c, ok := ms.cases[caseID]
	if !ok {
		return model.MatchLink{}, ErrCaseNotFound
	}

	now := time.Now().UTC()

	// Upsert: a live link for the pair is updated, not duplicated.
	for id, link := range ms.links {
		if link.SightingID != sightingID || link.CaseID != caseID {
			continue
		}
		if link.Status == model.MatchStatusRejected {
			continue
		}
		link.MatchConfidence = req.Confidence
		link.MatchType = req.MatchType
		if req.Reason != "" {
			link.MatchReason = req.Reason
		}
		link.UpdatedAt = now
		ms.links[id] = link
		return link, nil
	}

	link := model.MatchLink{
		ID:              uuid.New(),
		SightingID:      sightingID,
		CaseID:          caseID,
		MatchConfidence: req.Confidence,
		MatchType:       req.MatchType,
		MatchReason:     req.Reason,
		Status:          model.MatchStatusPotential,
		CreatedBy:       req.CreatedBy,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if sc, cc := locationCoord(s.Sighted), locationCoord(c.LastSeen); sc != nil && cc != nil {
		d := match.Distance(*sc, *cc)
		link.DistanceKM = &d
	}
	delta := s.SightedDate.Sub(c.LastSeenDate).Hours()
	if delta < 0 {
		delta = -delta
	}
	if !s.SightedDate.IsZero() && !c.LastSeenDate.IsZero() {
		link.TimeDeltaHours = &delta
	}

	ms.links[link.ID] = link
	return link, nil
}

func (ms *MemoryStore) ConfirmMatch(_ context.Context, linkID, confirmedBy string) (model.MatchLink, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return model.MatchLink{}, ErrLinkNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	link, ok := ms.links[id]
	if !ok {
		return model.MatchLink{}, ErrLinkNotFound
	}
	if link.Terminal() {
		return model.MatchLink{}, ErrLinkTerminal
	}

	now := time.Now().UTC()
	link.Status = model.MatchStatusConfirmed
	link.Confirmed = true
	link.ConfirmedBy = confirmedBy
	link.ConfirmedAt = &now
	link.UpdatedAt = now
	ms.links[id] = link
	return link, nil
}

func (ms *MemoryStore) RejectMatch(_ context.Context, linkID string) (model.MatchLink, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return model.MatchLink{}, ErrLinkNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	link, ok := ms.links[id]
	if !ok {
		return model.MatchLink{}, ErrLinkNotFound
	}
	if link.Terminal() {
		return model.MatchLink{}, ErrLinkTerminal
	}

	link.Status = model.MatchStatusRejected
	link.Confirmed = false
	link.UpdatedAt = time.Now().UTC()
	ms.links[id] = link
	return link, nil
}

func (ms *MemoryStore) GetLinkedCaseForSighting(_ context.Context, sightingID string) (*model.MatchLink, error) {
	id, err := uuid.Parse(sightingID)
	if err != nil {
		return nil, ErrSightingNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.sightings[id]; !ok {
		return nil, ErrSightingNotFound
	}

	var best *model.MatchLink
	for _, link := range ms.links {
		if link.SightingID != id || link.Status == model.MatchStatusRejected {
			continue
		}
		link := link
		if best == nil || link.MatchConfidence > best.MatchConfidence {
			best = &link
		}
	}
	return best, nil
}

// --- video evidence ---

func (ms *MemoryStore) GetVideoEvidenceForCase(_ context.Context, caseID string) ([]model.VideoAnalysisResult, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.cases[id]; !ok {
		return nil, ErrCaseNotFound
	}
	evidence := make([]model.VideoAnalysisResult, len(ms.evidence[id]))
	copy(evidence, ms.evidence[id])
	return evidence, nil
}

func (ms *MemoryStore) AddVideoEvidence(_ context.Context, caseID string, results []model.VideoAnalysisResult) (int, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return 0, ErrCaseNotFound
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.cases[id]; !ok {
		return 0, ErrCaseNotFound
	}

	existing := map[string]bool{}
	for _, ev := range ms.evidence[id] {
		existing[evidenceKey(ev)] = true
	}

	added := 0
	for _, ev := range results {
		key := evidenceKey(ev)
		if existing[key] {
			continue
		}
		existing[key] = true
		ms.evidence[id] = append(ms.evidence[id], ev)
		added++
	}
	return added, nil
}

func evidenceKey(ev model.VideoAnalysisResult) string {
	return ev.CameraID + "|" + ev.Timestamp.UTC().Format(time.RFC3339)
}

// --- helpers ---

func (ms *MemoryStore) orderedCases() []model.Case {
	out := make([]model.Case, 0, len(ms.cases))
	for _, c := range ms.cases {
		out = append(out, c)
	}
	sortCases(out)
	return out
}

func (ms *MemoryStore) orderedSightings() []model.Sighting {
	out := make([]model.Sighting, 0, len(ms.sightings))
	for _, s := range ms.sightings {
		out = append(out, s)
	}
	sortSightings(out)
	return out
}

// Listing order is newest first; the ID tie-break keeps pagination stable
// for records created in the same instant.
func sortCases(cases []model.Case) {
	sort.Slice(cases, func(i, j int) bool {
		if !cases[i].CreatedAt.Equal(cases[j].CreatedAt) {
			return cases[i].CreatedAt.After(cases[j].CreatedAt)
		}
		return cases[i].ID.String() < cases[j].ID.String()
	})
}

func sortSightings(sightings []model.Sighting) {
	sort.Slice(sightings, func(i, j int) bool {
		if !sightings[i].CreatedAt.Equal(sightings[j].CreatedAt) {
			return sightings[i].CreatedAt.After(sightings[j].CreatedAt)
		}
		return sightings[i].ID.String() < sightings[j].ID.String()
	})
}

func pageSliceCases(cases []model.Case, page, pageSize int) ([]model.Case, int) {
	total := len(cases)
	start := (page - 1) * pageSize
	if start >= total {
		return []model.Case{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return cases[start:end], total
}

func pageSliceSightings(sightings []model.Sighting, page, pageSize int) ([]model.Sighting, int) {
	total := len(sightings)
	start := (page - 1) * pageSize
	if start >= total {
		return []model.Sighting{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return sightings[start:end], total
}

func caseMatches(c model.Case, q, field string) bool {
	if q == "" {
		return true
	}
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }
	switch field {
	case "id":
		return contains(c.ID.String())
	case "name":
		return contains(c.Name)
	case "description":
		return contains(c.Description) || contains(c.Circumstances)
	case "city":
		return contains(c.LastSeen.City)
	case "address":
		return contains(c.LastSeen.Address)
	default: // "all"
		return contains(c.ID.String()) || contains(c.Name) ||
			contains(c.Description) || contains(c.Circumstances) ||
			contains(c.LastSeen.City) || contains(c.LastSeen.Address)
	}
}

func sightingMatches(s model.Sighting, q, field string) bool {
	if q == "" {
		return true
	}
	contains := func(v string) bool { return strings.Contains(strings.ToLower(v), q) }
	switch field {
	case "id":
		return contains(s.ID.String())
	case "description":
		return contains(s.Description)
	case "city":
		return contains(s.Sighted.City)
	case "address":
		return contains(s.Sighted.Address)
	default: // "all"
		return contains(s.ID.String()) || contains(s.Description) ||
			contains(s.Sighted.City) || contains(s.Sighted.Address)
	}
}

func locationCoord(l model.Location) *match.Coordinate {
	if !l.HasCoordinates() {
		return nil
	}
	return &match.Coordinate{Lat: *l.Latitude, Lon: *l.Longitude}
}

func caseEntity(c model.Case) match.Entity {
	e := match.Entity{
		ID:        c.ID.String(),
		Embedding: c.Embedding,
		Coord:     locationCoord(c.LastSeen),
	}
	if !c.LastSeenDate.IsZero() {
		date := c.LastSeenDate
		e.Date = &date
	}
	return e
}

func sightingEntity(s model.Sighting) match.Entity {
	e := match.Entity{
		ID:        s.ID.String(),
		Embedding: s.Embedding,
		Coord:     locationCoord(s.Sighted),
	}
	if !s.SightedDate.IsZero() {
		date := s.SightedDate
		e.Date = &date
	}
	return e
}
