package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/model"
	"github.com/google/uuid"
)

func newTestStore() *MemoryStore {
	return NewMemoryStore(embed.NewLocalEmbedder(32))
}

func floatPtr(v float64) *float64 { return &v }

func testCase(name, city string, lat, lon float64) model.Case {
	return model.Case{
		Name:         name,
		LastSeenDate: time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC),
		LastSeen: model.Location{
			City:      city,
			Latitude:  floatPtr(lat),
			Longitude: floatPtr(lon),
		},
		Status:      model.CaseStatusActive,
		Priority:    model.PriorityMedium,
		Description: "wearing a red jacket",
	}
}

func testSighting(city string, lat, lon float64, date time.Time) model.Sighting {
	return model.Sighting{
		SightedDate: date,
		Sighted: model.Location{
			City:      city,
			Latitude:  floatPtr(lat),
			Longitude: floatPtr(lon),
		},
		Description:     "person in a red jacket",
		ConfidenceLevel: model.ConfidenceMedium,
		SourceType:      model.SourceWitness,
	}
}

func TestCreateAndGetCase(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	id, err := ms.CreateCase(ctx, testCase("Maria Rossi", "Milan", 45.4654, 9.1859))
	if err != nil {
		t.Fatalf("CreateCase returned error %v", err)
	}

	got, err := ms.GetCaseByID(ctx, id)
	if err != nil {
		t.Fatalf("GetCaseByID returned error %v", err)
	}
	if got.Name != "Maria Rossi" || got.Status != model.CaseStatusActive {
		t.Errorf("unexpected case %+v", got)
	}

	if _, err := ms.GetCaseByID(ctx, "9f1c6a3e-0000-0000-0000-000000000000"); !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("missing id err = %v; want ErrCaseNotFound", err)
	}
}

func TestCreateCaseRejectsHalfCoordinates(t *testing.T) {
	ms := newTestStore()
	c := testCase("A", "Milan", 45.4, 9.1)
	c.LastSeen.Longitude = nil
	if _, err := ms.CreateCase(context.Background(), c); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v; want ErrValidation", err)
	}
}

func TestUpdateCaseNonExistentReturnsFalse(t *testing.T) {
	ms := newTestStore()
	c := testCase("Ghost", "Milan", 45.4, 9.1)
	c.ID = uuid.New()
	ok, err := ms.UpdateCase(context.Background(), c)
	if err != nil {
		t.Fatalf("UpdateCase returned error %v", err)
	}
	if ok {
		t.Error("update of non-existent case reported true")
	}
}

func TestGetCasesFilterAndPagination(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		c := testCase(fmt.Sprintf("Active %02d", i), "Milan", 45.4, 9.1)
		if _, err := ms.CreateCase(ctx, c); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 4; i++ {
		c := testCase(fmt.Sprintf("Closed %02d", i), "Milan", 45.4, 9.1)
		c.Status = model.CaseStatusResolved
		if _, err := ms.CreateCase(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := ms.GetCases(ctx, model.CaseFilter{Status: model.CaseStatusActive}, 2, 5)
	if err != nil {
		t.Fatalf("GetCases returned error %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d; want 12", total)
	}
	if len(items) != 5 {
		t.Errorf("len(items) = %d; want 5", len(items))
	}

	// Concatenating all pages yields exactly the filtered set.
	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		pageItems, pageTotal, err := ms.GetCases(ctx, model.CaseFilter{Status: model.CaseStatusActive}, page, 5)
		if err != nil {
			t.Fatal(err)
		}
		if pageTotal != 12 {
			t.Errorf("page %d total = %d; want 12", page, pageTotal)
		}
		for _, item := range pageItems {
			if seen[item.ID.String()] {
				t.Errorf("case %s appeared on two pages", item.ID)
			}
			seen[item.ID.String()] = true
		}
	}
	if len(seen) != 12 {
		t.Errorf("pages concatenated to %d distinct cases; want 12", len(seen))
	}

	if _, _, err := ms.GetCases(ctx, model.CaseFilter{}, 0, 5); !errors.Is(err, ErrValidation) {
		t.Errorf("page=0 err = %v; want ErrValidation", err)
	}
	if _, _, err := ms.GetCases(ctx, model.CaseFilter{}, 1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("pageSize=0 err = %v; want ErrValidation", err)
	}
}

func TestSearchCasesFieldSemantics(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	a := testCase("Maria Rossi", "Milan", 45.4, 9.1)
	b := testCase("John Doe", "Toronto", 43.6, -79.3)
	b.Description = "last seen near Maria's bakery"
	c := testCase("Jane Poe", "Lisbon", 38.7, -9.1)

	for _, cs := range []model.Case{a, b, c} {
		if _, err := ms.CreateCase(ctx, cs); err != nil {
			t.Fatal(err)
		}
	}

	// field=all unions matches across name and description (OR semantics).
	items, total, err := ms.SearchCases(ctx, "maria", "all", 1, 10)
	if err != nil {
		t.Fatalf("SearchCases returned error %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("all-field search matched %d; want 2", total)
	}

	items, _, err = ms.SearchCases(ctx, "maria", "name", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Name != "Maria Rossi" {
		t.Errorf("name-field search = %v", items)
	}

	items, _, err = ms.SearchCases(ctx, "MILAN", "city", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("city search should be case-insensitive, got %d", len(items))
	}
}

func TestSearchCasesByLocation(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	// Three within ~2 km of Milan centre, two ~50 km out.
	near := [][2]float64{{45.4654, 9.1859}, {45.478, 9.19}, {45.47, 9.2}}
	far := [][2]float64{{45.87, 9.4}, {45.05, 9.35}}
	for i, p := range near {
		if _, err := ms.CreateCase(ctx, testCase(fmt.Sprintf("near-%d", i), "Milan", p[0], p[1])); err != nil {
			t.Fatal(err)
		}
	}
	for i, p := range far {
		if _, err := ms.CreateCase(ctx, testCase(fmt.Sprintf("far-%d", i), "Como", p[0], p[1])); err != nil {
			t.Fatal(err)
		}
	}
	unlocated := testCase("no-geo", "", 0, 0)
	unlocated.LastSeen.Latitude = nil
	unlocated.LastSeen.Longitude = nil
	if _, err := ms.CreateCase(ctx, unlocated); err != nil {
		t.Fatal(err)
	}

	results, total, err := ms.SearchCasesByLocation(ctx, 45.4654, 9.1859, 5, 1, 10)
	if err != nil {
		t.Fatalf("SearchCasesByLocation returned error %v", err)
	}
	if total != 3 || len(results) != 3 {
		t.Fatalf("total = %d len = %d; want 3, 3", total, len(results))
	}
	for i, r := range results {
		if r.DistanceKM > 5 {
			t.Errorf("result %d at %.2f km exceeds radius", i, r.DistanceKM)
		}
		if i > 0 && results[i-1].DistanceKM > r.DistanceKM {
			t.Error("results not sorted ascending by distance")
		}
	}

	if _, _, err := ms.SearchCasesByLocation(ctx, 45.4654, 9.1859, 5, 0, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("page=0 err = %v; want ErrValidation", err)
	}
}

func TestLinkLifecycle(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseID, err := ms.CreateCase(ctx, testCase("Maria Rossi", "Milan", 45.4654, 9.1859))
	if err != nil {
		t.Fatal(err)
	}
	sightingID, err := ms.CreateSighting(ctx, testSighting("Milan", 45.47, 9.2, time.Date(2025, 5, 12, 15, 0, 0, 0, time.UTC)))
	if err != nil {
		t.Fatal(err)
	}

	link, err := ms.LinkSightingToCase(ctx, model.LinkRequest{
		SightingID: sightingID,
		CaseID:     caseID,
		Confidence: 0.85,
		MatchType:  model.MatchTypeAI,
		Reason:     "similar features",
	})
	if err != nil {
		t.Fatalf("LinkSightingToCase returned error %v", err)
	}
	if link.Status != model.MatchStatusPotential {
		t.Errorf("new link status = %s; want Potential", link.Status)
	}
	if link.MatchConfidence != 0.85 {
		t.Errorf("confidence = %v; want 0.85", link.MatchConfidence)
	}
	if link.DistanceKM == nil || *link.DistanceKM > 5 {
		t.Errorf("distance_km = %v; want a short hop", link.DistanceKM)
	}
	if link.TimeDeltaHours == nil {
		t.Error("time delta missing")
	}

	// Re-linking the same pair updates in place.
	second, err := ms.LinkSightingToCase(ctx, model.LinkRequest{
		SightingID: sightingID,
		CaseID:     caseID,
		Confidence: 0.6,
		MatchType:  model.MatchTypeManual,
	})
	if err != nil {
		t.Fatalf("second link returned error %v", err)
	}
	if second.ID != link.ID {
		t.Error("re-linking created a duplicate link")
	}
	if second.MatchConfidence != 0.6 {
		t.Errorf("updated confidence = %v; want 0.6", second.MatchConfidence)
	}
	pairLinks, err := ms.GetCaseSightings(ctx, caseID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairLinks) != 1 {
		t.Fatalf("pair has %d links; want exactly 1", len(pairLinks))
	}

	confirmed, err := ms.ConfirmMatch(ctx, link.ID.String(), "investigator-7")
	if err != nil {
		t.Fatalf("ConfirmMatch returned error %v", err)
	}
	if confirmed.Status != model.MatchStatusConfirmed || !confirmed.Confirmed {
		t.Errorf("confirm result %+v", confirmed)
	}
	if confirmed.ConfirmedBy != "investigator-7" || confirmed.ConfirmedAt == nil {
		t.Error("confirmation audit fields not set")
	}

	if _, err := ms.RejectMatch(ctx, link.ID.String()); !errors.Is(err, ErrLinkTerminal) {
		t.Errorf("reject after confirm err = %v; want ErrLinkTerminal", err)
	}
}

func TestLinkValidation(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseID, _ := ms.CreateCase(ctx, testCase("A", "Milan", 45.4, 9.1))
	sightingID, _ := ms.CreateSighting(ctx, testSighting("Milan", 45.4, 9.1, time.Now()))

	for _, bad := range []float64{1.5, -0.2} {
		_, err := ms.LinkSightingToCase(ctx, model.LinkRequest{
			SightingID: sightingID, CaseID: caseID, Confidence: bad, MatchType: model.MatchTypeManual,
		})
		if !errors.Is(err, ErrInvalidConfidence) {
			t.Errorf("confidence %v err = %v; want ErrInvalidConfidence", bad, err)
		}
	}
	for _, good := range []float64{0.0, 1.0} {
		if _, err := ms.LinkSightingToCase(ctx, model.LinkRequest{
			SightingID: sightingID, CaseID: caseID, Confidence: good, MatchType: model.MatchTypeManual,
		}); err != nil {
			t.Errorf("confidence %v unexpectedly rejected: %v", good, err)
		}
	}

	_, err := ms.LinkSightingToCase(ctx, model.LinkRequest{
		SightingID: sightingID, CaseID: "c0ffee00-0000-0000-0000-000000000000", Confidence: 0.5, MatchType: model.MatchTypeManual,
	})
	if !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("missing case err = %v; want ErrCaseNotFound", err)
	}
}

func TestTwoPhaseRanking(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseID, err := ms.CreateCase(ctx, testCase("Maria Rossi", "Milan", 45.4654, 9.1859))
	if err != nil {
		t.Fatal(err)
	}
	base := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	if _, err := ms.CreateSighting(ctx, testSighting("Milan", 45.47, 9.2, base)); err != nil {
		t.Fatal(err)
	}
	if _, err := ms.CreateSighting(ctx, testSighting("Toronto", 43.65, -79.38, base)); err != nil {
		t.Fatal(err)
	}

	// Phase one not run yet: ranking must fail closed.
	if _, err := ms.FindSimilarSightings(ctx, caseID, 0, 0, 10); !errors.Is(err, ErrEmbeddingsUnavailable) {
		t.Fatalf("rank before refresh err = %v; want ErrEmbeddingsUnavailable", err)
	}

	caseResult, err := ms.UpdateCaseEmbeddings(ctx)
	if err != nil {
		t.Fatalf("UpdateCaseEmbeddings returned error %v", err)
	}
	if !caseResult.Success || caseResult.RowsModified != 1 {
		t.Errorf("case refresh result %+v", caseResult)
	}
	sightingResult, err := ms.UpdateSightingEmbeddings(ctx)
	if err != nil {
		t.Fatalf("UpdateSightingEmbeddings returned error %v", err)
	}
	if sightingResult.RowsModified != 2 {
		t.Errorf("sighting refresh modified %d; want 2", sightingResult.RowsModified)
	}

	// A second refresh is a no-op: embeddings already exist.
	again, err := ms.UpdateSightingEmbeddings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if again.RowsModified != 0 {
		t.Errorf("repeat refresh modified %d; want 0", again.RowsModified)
	}

	results, err := ms.FindSimilarSightings(ctx, caseID, 0, 0, 10)
	if err != nil {
		t.Fatalf("FindSimilarSightings returned error %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("ranked %d candidates; want 2", len(results))
	}
	for _, r := range results {
		if r.Similarity < 0 || r.Similarity > 1 {
			t.Errorf("similarity %v outside [0,1]", r.Similarity)
		}
		if r.Summary == "" {
			t.Error("summary passthrough missing")
		}
	}

	// Geographic narrowing keeps only the Milan sighting.
	narrowed, err := ms.FindSimilarSightings(ctx, caseID, 50, 30, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(narrowed) != 1 {
		t.Errorf("narrowed rank has %d results; want 1", len(narrowed))
	}
}

func TestRankEmptyPoolIsNotAnError(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseID, err := ms.CreateCase(ctx, testCase("Maria Rossi", "Milan", 45.4654, 9.1859))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ms.UpdateCaseEmbeddings(ctx); err != nil {
		t.Fatal(err)
	}

	results, err := ms.FindSimilarSightings(ctx, caseID, 100, 30, 10)
	if err != nil {
		t.Fatalf("empty pool should not error, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
}

func TestSightingWorkflow(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	id, err := ms.CreateSighting(ctx, testSighting("Milan", 45.4, 9.1, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	s, err := ms.GetSightingByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != model.SightingStatusNew || s.Verified {
		t.Errorf("new sighting %+v", s)
	}

	verified, err := ms.VerifySighting(ctx, id, "investigator-3")
	if err != nil {
		t.Fatalf("VerifySighting returned error %v", err)
	}
	if verified.Status != model.SightingStatusVerified || !verified.Verified || verified.VerifiedBy != "investigator-3" {
		t.Errorf("verified sighting %+v", verified)
	}

	if _, err := ms.RejectSighting(ctx, id); !errors.Is(err, ErrSightingFinal) {
		t.Errorf("reject after verify err = %v; want ErrSightingFinal", err)
	}
}

func TestGetLinkedCaseForSighting(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseA, _ := ms.CreateCase(ctx, testCase("A", "Milan", 45.4, 9.1))
	caseB, _ := ms.CreateCase(ctx, testCase("B", "Milan", 45.5, 9.2))
	sightingID, _ := ms.CreateSighting(ctx, testSighting("Milan", 45.4, 9.1, time.Now()))

	link, err := ms.GetLinkedCaseForSighting(ctx, sightingID)
	if err != nil {
		t.Fatal(err)
	}
	if link != nil {
		t.Error("unlinked sighting should resolve to nil link")
	}

	if _, err := ms.LinkSightingToCase(ctx, model.LinkRequest{SightingID: sightingID, CaseID: caseA, Confidence: 0.4, MatchType: model.MatchTypeManual}); err != nil {
		t.Fatal(err)
	}
	if _, err := ms.LinkSightingToCase(ctx, model.LinkRequest{SightingID: sightingID, CaseID: caseB, Confidence: 0.9, MatchType: model.MatchTypeAI}); err != nil {
		t.Fatal(err)
	}

	link, err = ms.GetLinkedCaseForSighting(ctx, sightingID)
	if err != nil {
		t.Fatal(err)
	}
	if link == nil || link.CaseID.String() != caseB {
		t.Errorf("expected highest-confidence link to case B, got %+v", link)
	}
}

func TestVideoEvidenceIdempotent(t *testing.T) {
	ms := newTestStore()
	ctx := context.Background()

	caseID, _ := ms.CreateCase(ctx, testCase("A", "Milan", 45.4, 9.1))
	stamp := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	batch := []model.VideoAnalysisResult{
		{CameraID: "cam-1", Timestamp: stamp, ConfidenceScore: 0.7, Latitude: 45.4, Longitude: 9.1},
		{CameraID: "cam-2", Timestamp: stamp, ConfidenceScore: 0.5, Latitude: 45.5, Longitude: 9.2},
	}

	added, err := ms.AddVideoEvidence(ctx, caseID, batch)
	if err != nil {
		t.Fatalf("AddVideoEvidence returned error %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d; want 2", added)
	}

	// A duplicate write (cancellation racing completion) adds nothing.
	added, err = ms.AddVideoEvidence(ctx, caseID, batch)
	if err != nil {
		t.Fatal(err)
	}
	if added != 0 {
		t.Errorf("duplicate batch added %d; want 0", added)
	}

	evidence, err := ms.GetVideoEvidenceForCase(ctx, caseID)
	if err != nil {
		t.Fatal(err)
	}
	if len(evidence) != 2 {
		t.Errorf("evidence count = %d; want 2", len(evidence))
	}
}
