package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwise1/findlink/internal/db"
	"github.com/bwise1/findlink/internal/embed"
	"github.com/bwise1/findlink/internal/match"
	"github.com/bwise1/findlink/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresStore is the production DataService backend. Listing, filtering
// and radius search run in SQL (PostGIS); similarity ranking pulls the
// candidate pool and delegates to the shared ranker so both backends score
// identically.
type PostgresStore struct {
	db       *db.DB
	provider embed.Provider
}

func NewPostgresStore(database *db.DB, provider embed.Provider) *PostgresStore {
	return &PostgresStore{db: database, provider: provider}
}

const caseColumns = `
        id, name, date_of_birth, gender, last_seen_date,
        address, city, country, postal_code,
        ST_Y(location::geometry) as latitude, ST_X(location::geometry) as longitude,
        status, priority, circumstances, description,
        height_cm, weight_kg, embedding, created_by, created_at, updated_at`

const sightingColumns = `
        id, sighted_date, address, city, country, postal_code,
        ST_Y(location::geometry) as latitude, ST_X(location::geometry) as longitude,
        apparent_gender, apparent_age, age_range, height_cm, weight_kg,
        description, confidence_level, source_type, status, priority,
        verified, verified_by, embedding, reported_by, created_at, updated_at`

const linkColumns = `
        id, sighting_id, case_id, match_confidence, match_type, match_reason,
        status, confirmed, confirmed_by, confirmed_at,
        distance_km, time_delta_hours, created_by, created_at, updated_at`

func scanCase(row pgx.Row) (model.Case, error) {
	var c model.Case
	err := row.Scan(
		&c.ID, &c.Name, &c.DateOfBirth, &c.Gender, &c.LastSeenDate,
		&c.LastSeen.Address, &c.LastSeen.City, &c.LastSeen.Country, &c.LastSeen.PostalCode,
		&c.LastSeen.Latitude, &c.LastSeen.Longitude,
		&c.Status, &c.Priority, &c.Circumstances, &c.Description,
		&c.HeightCM, &c.WeightKG, &c.Embedding, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanSighting(row pgx.Row) (model.Sighting, error) {
	var s model.Sighting
	err := row.Scan(
		&s.ID, &s.SightedDate,
		&s.Sighted.Address, &s.Sighted.City, &s.Sighted.Country, &s.Sighted.PostalCode,
		&s.Sighted.Latitude, &s.Sighted.Longitude,
		&s.ApparentGender, &s.ApparentAge, &s.AgeRange, &s.HeightCM, &s.WeightKG,
		&s.Description, &s.ConfidenceLevel, &s.SourceType, &s.Status, &s.Priority,
		&s.Verified, &s.VerifiedBy, &s.Embedding, &s.ReportedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func scanLink(row pgx.Row) (model.MatchLink, error) {
	var m model.MatchLink
	err := row.Scan(
		&m.ID, &m.SightingID, &m.CaseID, &m.MatchConfidence, &m.MatchType, &m.MatchReason,
		&m.Status, &m.Confirmed, &m.ConfirmedBy, &m.ConfirmedAt,
		&m.DistanceKM, &m.TimeDeltaHours, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

// --- cases ---

func (ps *PostgresStore) GetCases(ctx context.Context, filter model.CaseFilter, page, pageSize int) ([]model.Case, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + caseColumns + `, COUNT(*) OVER() AS total_count FROM cases WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Status != "" {
		argCount++
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		argCount++
		query += fmt.Sprintf(" AND priority = $%d", argCount)
		args = append(args, filter.Priority)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := ps.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	var total int
	for rows.Next() {
		var c model.Case
		if err := rows.Scan(
			&c.ID, &c.Name, &c.DateOfBirth, &c.Gender, &c.LastSeenDate,
			&c.LastSeen.Address, &c.LastSeen.City, &c.LastSeen.Country, &c.LastSeen.PostalCode,
			&c.LastSeen.Latitude, &c.LastSeen.Longitude,
			&c.Status, &c.Priority, &c.Circumstances, &c.Description,
			&c.HeightCM, &c.WeightKG, &c.Embedding, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, total, rows.Err()
}

func (ps *PostgresStore) GetCaseByID(ctx context.Context, id string) (model.Case, error) {
	caseID, err := uuid.Parse(id)
	if err != nil {
		return model.Case{}, ErrCaseNotFound
	}

	query := `SELECT` + caseColumns + ` FROM cases WHERE id = $1`
	c, err := scanCase(ps.db.Pool().QueryRow(ctx, query, caseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Case{}, ErrCaseNotFound
	}
	return c, err
}

func (ps *PostgresStore) CreateCase(ctx context.Context, c model.Case) (string, error) {
	if err := c.LastSeen.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = model.CaseStatusActive
	}

	query := `
        INSERT INTO cases (
            id, name, date_of_birth, gender, last_seen_date,
            address, city, country, postal_code, location,
            status, priority, circumstances, description,
            height_cm, weight_kg, created_by
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9,
            CASE WHEN $10::float8 IS NULL THEN NULL
                 ELSE ST_SetSRID(ST_MakePoint($11, $10), 4326)::geography END,
            $12, $13, $14, $15, $16, $17, $18
        ) RETURNING id
    `
	var newID uuid.UUID
	err := ps.db.Pool().QueryRow(ctx, query,
		c.ID, c.Name, c.DateOfBirth, c.Gender, c.LastSeenDate,
		c.LastSeen.Address, c.LastSeen.City, c.LastSeen.Country, c.LastSeen.PostalCode,
		c.LastSeen.Latitude, c.LastSeen.Longitude,
		c.Status, c.Priority, c.Circumstances, c.Description,
		c.HeightCM, c.WeightKG, c.CreatedBy,
	).Scan(&newID)
	if err != nil {
		log.Println("error creating case", err)
		return "", err
	}
	return newID.String(), nil
}

func (ps *PostgresStore) UpdateCase(ctx context.Context, c model.Case) (bool, error) {
	if err := c.LastSeen.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	query := `
        UPDATE cases
        SET
            name = $1, date_of_birth = $2, gender = $3, last_seen_date = $4,
            address = $5, city = $6, country = $7, postal_code = $8,
            location = CASE WHEN $9::float8 IS NULL THEN NULL
                            ELSE ST_SetSRID(ST_MakePoint($10, $9), 4326)::geography END,
            status = $11, priority = $12, circumstances = $13, description = $14,
            height_cm = $15, weight_kg = $16,
            embedding = NULL,
            updated_at = NOW()
        WHERE id = $17
    `
	result, err := ps.db.Pool().Exec(ctx, query,
		c.Name, c.DateOfBirth, c.Gender, c.LastSeenDate,
		c.LastSeen.Address, c.LastSeen.City, c.LastSeen.Country, c.LastSeen.PostalCode,
		c.LastSeen.Latitude, c.LastSeen.Longitude,
		c.Status, c.Priority, c.Circumstances, c.Description,
		c.HeightCM, c.WeightKG, c.ID,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (ps *PostgresStore) SearchCases(ctx context.Context, query, field string, page, pageSize int) ([]model.Case, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	where, pattern := caseSearchClause(field)
	sql := `SELECT` + caseColumns + `, COUNT(*) OVER() AS total_count FROM cases WHERE ` + where +
		` ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	rows, err := ps.db.Pool().Query(ctx, sql, pattern(query), pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("searching cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	var total int
	for rows.Next() {
		var c model.Case
		if err := rows.Scan(
			&c.ID, &c.Name, &c.DateOfBirth, &c.Gender, &c.LastSeenDate,
			&c.LastSeen.Address, &c.LastSeen.City, &c.LastSeen.Country, &c.LastSeen.PostalCode,
			&c.LastSeen.Latitude, &c.LastSeen.Longitude,
			&c.Status, &c.Priority, &c.Circumstances, &c.Description,
			&c.HeightCM, &c.WeightKG, &c.Embedding, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, total, rows.Err()
}

// caseSearchClause maps a search field to its ILIKE clause. field="all"
// unions across id, name, free text and location (OR semantics).
func caseSearchClause(field string) (string, func(string) string) {
	like := func(q string) string { return "%" + q + "%" }
	switch field {
	case "id":
		return "id::text ILIKE $1", like
	case "name":
		return "name ILIKE $1", like
	case "description":
		return "(description ILIKE $1 OR circumstances ILIKE $1)", like
	case "city":
		return "city ILIKE $1", like
	case "address":
		return "address ILIKE $1", like
	default:
		return `(id::text ILIKE $1 OR name ILIKE $1 OR description ILIKE $1
                 OR circumstances ILIKE $1 OR city ILIKE $1 OR address ILIKE $1)`, like
	}
}

func (ps *PostgresStore) SearchCasesByLocation(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + caseColumns + `,
            ST_Distance(location, ST_MakePoint($1, $2)::geography) / 1000 AS distance_km,
            COUNT(*) OVER() AS total_count
        FROM cases
        WHERE location IS NOT NULL
          AND ST_DWithin(location, ST_MakePoint($1, $2)::geography, $3)
        ORDER BY distance_km, created_at DESC, id
        LIMIT $4 OFFSET $5
    `
	rows, err := ps.db.Pool().Query(ctx, query, lon, lat, radiusKM*1000, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("querying nearby cases: %w", err)
	}
	defer rows.Close()

	var results []model.CaseDistance
	var total int
	for rows.Next() {
		var cd model.CaseDistance
		if err := rows.Scan(
			&cd.ID, &cd.Name, &cd.DateOfBirth, &cd.Gender, &cd.LastSeenDate,
			&cd.LastSeen.Address, &cd.LastSeen.City, &cd.LastSeen.Country, &cd.LastSeen.PostalCode,
			&cd.LastSeen.Latitude, &cd.LastSeen.Longitude,
			&cd.Status, &cd.Priority, &cd.Circumstances, &cd.Description,
			&cd.HeightCM, &cd.WeightKG, &cd.Embedding, &cd.CreatedBy, &cd.CreatedAt, &cd.UpdatedAt,
			&cd.DistanceKM, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning case: %w", err)
		}
		results = append(results, cd)
	}
	return results, total, rows.Err()
}

// SearchCasesAlongRoute loads the located pool and reuses the in-process
// corridor search; a route can carry hundreds of vertices, which does not
// translate to a sane single SQL predicate.
func (ps *PostgresStore) SearchCasesAlongRoute(ctx context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.CaseDistance, int, error) {
	cases, err := ps.locatedCases(ctx)
	if err != nil {
		return nil, 0, err
	}

	pool := make([]*match.Coordinate, len(cases))
	for i, c := range cases {
		pool[i] = locationCoord(c.LastSeen)
	}
	hits, total, err := match.SearchAlongRoute(pool, route, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.CaseDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.CaseDistance{Case: cases[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

func (ps *PostgresStore) locatedCases(ctx context.Context) ([]model.Case, error) {
	query := `SELECT` + caseColumns + ` FROM cases WHERE location IS NOT NULL ORDER BY created_at DESC, id`
	rows, err := ps.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying located cases: %w", err)
	}
	defer rows.Close()

	var cases []model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// --- sightings ---

func (ps *PostgresStore) GetSightings(ctx context.Context, filter model.SightingFilter, page, pageSize int) ([]model.Sighting, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + sightingColumns + `, COUNT(*) OVER() AS total_count FROM sightings WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Status != "" {
		argCount++
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filter.Status)
	}
	if filter.ConfidenceLevel != "" {
		argCount++
		query += fmt.Sprintf(" AND confidence_level = $%d", argCount)
		args = append(args, filter.ConfidenceLevel)
	}
	if filter.SourceType != "" {
		argCount++
		query += fmt.Sprintf(" AND source_type = $%d", argCount)
		args = append(args, filter.SourceType)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d", argCount+1, argCount+2)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := ps.db.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying sightings: %w", err)
	}
	defer rows.Close()

	var sightings []model.Sighting
	var total int
	for rows.Next() {
		var s model.Sighting
		if err := rows.Scan(
			&s.ID, &s.SightedDate,
			&s.Sighted.Address, &s.Sighted.City, &s.Sighted.Country, &s.Sighted.PostalCode,
			&s.Sighted.Latitude, &s.Sighted.Longitude,
			&s.ApparentGender, &s.ApparentAge, &s.AgeRange, &s.HeightCM, &s.WeightKG,
			&s.Description, &s.ConfidenceLevel, &s.SourceType, &s.Status, &s.Priority,
			&s.Verified, &s.VerifiedBy, &s.Embedding, &s.ReportedBy, &s.CreatedAt, &s.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning sighting: %w", err)
		}
		sightings = append(sightings, s)
	}
	return sightings, total, rows.Err()
}

func (ps *PostgresStore) GetSightingByID(ctx context.Context, id string) (model.Sighting, error) {
	sightingID, err := uuid.Parse(id)
	if err != nil {
		return model.Sighting{}, ErrSightingNotFound
	}

	query := `SELECT` + sightingColumns + ` FROM sightings WHERE id = $1`
	s, err := scanSighting(ps.db.Pool().QueryRow(ctx, query, sightingID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Sighting{}, ErrSightingNotFound
	}
	return s, err
}

func (ps *PostgresStore) CreateSighting(ctx context.Context, s model.Sighting) (string, error) {
	if err := s.Sighted.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = model.SightingStatusNew
	}

	query := `
        INSERT INTO sightings (
            id, sighted_date, address, city, country, postal_code, location,
            apparent_gender, apparent_age, age_range, height_cm, weight_kg,
            description, confidence_level, source_type, status, priority, reported_by
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            CASE WHEN $7::float8 IS NULL THEN NULL
                 ELSE ST_SetSRID(ST_MakePoint($8, $7), 4326)::geography END,
            $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
        ) RETURNING id
    `
	var newID uuid.UUID
	err := ps.db.Pool().QueryRow(ctx, query,
		s.ID, s.SightedDate,
		s.Sighted.Address, s.Sighted.City, s.Sighted.Country, s.Sighted.PostalCode,
		s.Sighted.Latitude, s.Sighted.Longitude,
		s.ApparentGender, s.ApparentAge, s.AgeRange, s.HeightCM, s.WeightKG,
		s.Description, s.ConfidenceLevel, s.SourceType, s.Status, s.Priority, s.ReportedBy,
	).Scan(&newID)
	if err != nil {
		log.Println("error creating sighting", err)
		return "", err
	}
	return newID.String(), nil
}

func (ps *PostgresStore) UpdateSighting(ctx context.Context, s model.Sighting) (bool, error) {
	if err := s.Sighted.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	query := `
        UPDATE sightings
        SET
            sighted_date = $1, address = $2, city = $3, country = $4, postal_code = $5,
            location = CASE WHEN $6::float8 IS NULL THEN NULL
                            ELSE ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography END,
            apparent_gender = $8, apparent_age = $9, age_range = $10,
            height_cm = $11, weight_kg = $12, description = $13,
            confidence_level = $14, source_type = $15, priority = $16,
            embedding = NULL,
            updated_at = NOW()
        WHERE id = $17
    `
	result, err := ps.db.Pool().Exec(ctx, query,
		s.SightedDate, s.Sighted.Address, s.Sighted.City, s.Sighted.Country, s.Sighted.PostalCode,
		s.Sighted.Latitude, s.Sighted.Longitude,
		s.ApparentGender, s.ApparentAge, s.AgeRange,
		s.HeightCM, s.WeightKG, s.Description,
		s.ConfidenceLevel, s.SourceType, s.Priority, s.ID,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (ps *PostgresStore) SearchSightings(ctx context.Context, query, field string, page, pageSize int) ([]model.Sighting, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	where := sightingSearchClause(field)
	sql := `SELECT` + sightingColumns + `, COUNT(*) OVER() AS total_count FROM sightings WHERE ` + where +
		` ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	rows, err := ps.db.Pool().Query(ctx, sql, "%"+query+"%", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("searching sightings: %w", err)
	}
	defer rows.Close()

	var sightings []model.Sighting
	var total int
	for rows.Next() {
		var s model.Sighting
		if err := rows.Scan(
			&s.ID, &s.SightedDate,
			&s.Sighted.Address, &s.Sighted.City, &s.Sighted.Country, &s.Sighted.PostalCode,
			&s.Sighted.Latitude, &s.Sighted.Longitude,
			&s.ApparentGender, &s.ApparentAge, &s.AgeRange, &s.HeightCM, &s.WeightKG,
			&s.Description, &s.ConfidenceLevel, &s.SourceType, &s.Status, &s.Priority,
			&s.Verified, &s.VerifiedBy, &s.Embedding, &s.ReportedBy, &s.CreatedAt, &s.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning sighting: %w", err)
		}
		sightings = append(sightings, s)
	}
	return sightings, total, rows.Err()
}

func sightingSearchClause(field string) string {
	switch field {
	case "id":
		return "id::text ILIKE $1"
	case "description":
		return "description ILIKE $1"
	case "city":
		return "city ILIKE $1"
	case "address":
		return "address ILIKE $1"
	default:
		return "(id::text ILIKE $1 OR description ILIKE $1 OR city ILIKE $1 OR address ILIKE $1)"
	}
}

func (ps *PostgresStore) SearchSightingsByLocation(ctx context.Context, lat, lon, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error) {
	if err := validPage(page, pageSize); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + sightingColumns + `,
            ST_Distance(location, ST_MakePoint($1, $2)::geography) / 1000 AS distance_km,
            COUNT(*) OVER() AS total_count
        FROM sightings
        WHERE location IS NOT NULL
          AND ST_DWithin(location, ST_MakePoint($1, $2)::geography, $3)
        ORDER BY distance_km, created_at DESC, id
        LIMIT $4 OFFSET $5
    `
	rows, err := ps.db.Pool().Query(ctx, query, lon, lat, radiusKM*1000, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("querying nearby sightings: %w", err)
	}
	defer rows.Close()

	var results []model.SightingDistance
	var total int
	for rows.Next() {
		var sd model.SightingDistance
		if err := rows.Scan(
			&sd.ID, &sd.SightedDate,
			&sd.Sighted.Address, &sd.Sighted.City, &sd.Sighted.Country, &sd.Sighted.PostalCode,
			&sd.Sighted.Latitude, &sd.Sighted.Longitude,
			&sd.ApparentGender, &sd.ApparentAge, &sd.AgeRange, &sd.HeightCM, &sd.WeightKG,
			&sd.Description, &sd.ConfidenceLevel, &sd.SourceType, &sd.Status, &sd.Priority,
			&sd.Verified, &sd.VerifiedBy, &sd.Embedding, &sd.ReportedBy, &sd.CreatedAt, &sd.UpdatedAt,
			&sd.DistanceKM, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning sighting: %w", err)
		}
		results = append(results, sd)
	}
	return results, total, rows.Err()
}

func (ps *PostgresStore) SearchSightingsAlongRoute(ctx context.Context, route []match.Coordinate, radiusKM float64, page, pageSize int) ([]model.SightingDistance, int, error) {
	sightings, err := ps.locatedSightings(ctx)
	if err != nil {
		return nil, 0, err
	}

	pool := make([]*match.Coordinate, len(sightings))
	for i, s := range sightings {
		pool[i] = locationCoord(s.Sighted)
	}
	hits, total, err := match.SearchAlongRoute(pool, route, radiusKM, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	results := make([]model.SightingDistance, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.SightingDistance{Sighting: sightings[hit.Index], DistanceKM: hit.DistanceKM})
	}
	return results, total, nil
}

func (ps *PostgresStore) locatedSightings(ctx context.Context) ([]model.Sighting, error) {
	query := `SELECT` + sightingColumns + ` FROM sightings WHERE location IS NOT NULL ORDER BY created_at DESC, id`
	rows, err := ps.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying located sightings: %w", err)
	}
	defer rows.Close()

	var sightings []model.Sighting
	for rows.Next() {
		s, err := scanSighting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		sightings = append(sightings, s)
	}
	return sightings, rows.Err()
}

func (ps *PostgresStore) VerifySighting(ctx context.Context, id, verifiedBy string) (model.Sighting, error) {
	return ps.resolveSighting(ctx, id, model.SightingStatusVerified, verifiedBy)
}

func (ps *PostgresStore) RejectSighting(ctx context.Context, id string) (model.Sighting, error) {
	return ps.resolveSighting(ctx, id, model.SightingStatusFalsePositive, "")
}

func (ps *PostgresStore) resolveSighting(ctx context.Context, id, status, verifiedBy string) (model.Sighting, error) {
	sightingID, err := uuid.Parse(id)
	if err != nil {
		return model.Sighting{}, ErrSightingNotFound
	}

	verified := status == model.SightingStatusVerified
	row := ps.db.Pool().QueryRow(ctx, `
        UPDATE sightings
        SET status = $1, verified = $2, verified_by = $3, updated_at = NOW()
        WHERE id = $4 AND status NOT IN ('Verified', 'FalsePositive')
        RETURNING`+sightingColumns+`
    `, status, verified, verifiedBy, sightingID)

	s, err := scanSighting(row)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if qErr := ps.db.Pool().QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM sightings WHERE id = $1)`, sightingID).Scan(&exists); qErr != nil {
			return model.Sighting{}, qErr
		}
		if !exists {
			return model.Sighting{}, ErrSightingNotFound
		}
		return model.Sighting{}, ErrSightingFinal
	}
	return s, err
}

// --- embeddings and ranking ---

func (ps *PostgresStore) UpdateCaseEmbeddings(ctx context.Context) (embed.Result, error) {
	rows, err := ps.db.Pool().Query(ctx,
		`SELECT id, name, description, circumstances, city FROM cases WHERE embedding IS NULL`)
	if err != nil {
		return embed.Result{Message: err.Error()}, err
	}
	defer rows.Close()

	type pending struct {
		id   uuid.UUID
		text string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		var name, description, circumstances, city string
		if err := rows.Scan(&p.id, &name, &description, &circumstances, &city); err != nil {
			return embed.Result{Message: err.Error()}, err
		}
		p.text = name + " " + description + " " + circumstances + " " + city
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		return embed.Result{Message: err.Error()}, err
	}

	modified := 0
	for _, p := range todo {
		vector, err := ps.provider.Embed(ctx, p.text)
		if err != nil {
			return embed.Result{RowsModified: modified, Message: err.Error()}, err
		}
		if _, err := ps.db.Pool().Exec(ctx,
			`UPDATE cases SET embedding = $1, updated_at = NOW() WHERE id = $2`, vector, p.id); err != nil {
			return embed.Result{RowsModified: modified, Message: err.Error()}, err
		}
		modified++
	}
	return embed.Result{Success: true, RowsModified: modified, Message: fmt.Sprintf("embedded %d cases", modified)}, nil
}

func (ps *PostgresStore) UpdateSightingEmbeddings(ctx context.Context) (embed.Result, error) {
	rows, err := ps.db.Pool().Query(ctx,
		`SELECT id, description, apparent_gender, age_range, city FROM sightings WHERE embedding IS NULL`)
	if err != nil {
		return embed.Result{Message: err.Error()}, err
	}
	defer rows.Close()

	type pending struct {
		id   uuid.UUID
		text string
	}
	var todo []pending
	for rows.Next() {
		var p pending
		var description, gender, ageRange, city string
		if err := rows.Scan(&p.id, &description, &gender, &ageRange, &city); err != nil {
			return embed.Result{Message: err.Error()}, err
		}
		p.text = description + " " + gender + " " + ageRange + " " + city
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		return embed.Result{Message: err.Error()}, err
	}

	modified := 0
	for _, p := range todo {
		vector, err := ps.provider.Embed(ctx, p.text)
		if err != nil {
			return embed.Result{RowsModified: modified, Message: err.Error()}, err
		}
		if _, err := ps.db.Pool().Exec(ctx,
			`UPDATE sightings SET embedding = $1, updated_at = NOW() WHERE id = $2`, vector, p.id); err != nil {
			return embed.Result{RowsModified: modified, Message: err.Error()}, err
		}
		modified++
	}
	return embed.Result{Success: true, RowsModified: modified, Message: fmt.Sprintf("embedded %d sightings", modified)}, nil
}

func (ps *PostgresStore) FindSimilarSightings(ctx context.Context, caseID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error) {
	c, err := ps.GetCaseByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	rows, err := ps.db.Pool().Query(ctx,
		`SELECT`+sightingColumns+` FROM sightings WHERE status <> 'FalsePositive' ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying candidate sightings: %w", err)
	}
	defer rows.Close()

	var candidates []match.Entity
	for rows.Next() {
		s, err := scanSighting(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		candidates = append(candidates, sightingEntity(s))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	opts := match.RankOptions{RadiusKM: radiusKM, MaxDeltaDays: deltaDays, TopK: topK}
	return match.Rank(caseEntity(c), candidates, opts, ps.provider.Distance, ps.provider.Summary)
}

func (ps *PostgresStore) FindSimilarCases(ctx context.Context, sightingID string, radiusKM, deltaDays float64, topK int) ([]match.RankedMatch, error) {
	s, err := ps.GetSightingByID(ctx, sightingID)
	if err != nil {
		return nil, err
	}

	rows, err := ps.db.Pool().Query(ctx,
		`SELECT`+caseColumns+` FROM cases WHERE status = 'Active' ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying candidate cases: %w", err)
	}
	defer rows.Close()

	var candidates []match.Entity
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning case: %w", err)
		}
		candidates = append(candidates, caseEntity(c))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	opts := match.RankOptions{RadiusKM: radiusKM, MaxDeltaDays: deltaDays, TopK: topK}
	return match.Rank(sightingEntity(s), candidates, opts, ps.provider.Distance, ps.provider.Summary)
}

// --- match links ---

func (ps *PostgresStore) GetCaseSightings(ctx context.Context, caseID string) ([]model.CaseSighting, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}
	if _, err := ps.GetCaseByID(ctx, caseID); err != nil {
		return nil, err
	}

	query := `
        SELECT
            m.id, m.sighting_id, m.case_id, m.match_confidence, m.match_type, m.match_reason,
            m.status, m.confirmed, m.confirmed_by, m.confirmed_at,
            m.distance_km, m.time_delta_hours, m.created_by, m.created_at, m.updated_at,
            s.id, s.sighted_date, s.address, s.city, s.country, s.postal_code,
            ST_Y(s.location::geometry), ST_X(s.location::geometry),
            s.apparent_gender, s.apparent_age, s.age_range, s.height_cm, s.weight_kg,
            s.description, s.confidence_level, s.source_type, s.status, s.priority,
            s.verified, s.verified_by, s.embedding, s.reported_by, s.created_at, s.updated_at
        FROM match_links m
        JOIN sightings s ON s.id = m.sighting_id
        WHERE m.case_id = $1 AND m.status <> 'Rejected'
        ORDER BY m.match_confidence DESC
    `
	rows, err := ps.db.Pool().Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying case sightings: %w", err)
	}
	defer rows.Close()

	var results []model.CaseSighting
	for rows.Next() {
		var cs model.CaseSighting
		if err := rows.Scan(
			&cs.Link.ID, &cs.Link.SightingID, &cs.Link.CaseID, &cs.Link.MatchConfidence,
			&cs.Link.MatchType, &cs.Link.MatchReason, &cs.Link.Status, &cs.Link.Confirmed,
			&cs.Link.ConfirmedBy, &cs.Link.ConfirmedAt, &cs.Link.DistanceKM, &cs.Link.TimeDeltaHours,
			&cs.Link.CreatedBy, &cs.Link.CreatedAt, &cs.Link.UpdatedAt,
			&cs.Sighting.ID, &cs.Sighting.SightedDate,
			&cs.Sighting.Sighted.Address, &cs.Sighting.Sighted.City, &cs.Sighting.Sighted.Country, &cs.Sighting.Sighted.PostalCode,
			&cs.Sighting.Sighted.Latitude, &cs.Sighting.Sighted.Longitude,
			&cs.Sighting.ApparentGender, &cs.Sighting.ApparentAge, &cs.Sighting.AgeRange,
			&cs.Sighting.HeightCM, &cs.Sighting.WeightKG,
			&cs.Sighting.Description, &cs.Sighting.ConfidenceLevel, &cs.Sighting.SourceType,
			&cs.Sighting.Status, &cs.Sighting.Priority,
			&cs.Sighting.Verified, &cs.Sighting.VerifiedBy, &cs.Sighting.Embedding,
			&cs.Sighting.ReportedBy, &cs.Sighting.CreatedAt, &cs.Sighting.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning case sighting: %w", err)
		}
		results = append(results, cs)
	}
	return results, rows.Err()
}

func (ps *PostgresStore) LinkSightingToCase(ctx context.Context, req model.LinkRequest) (model.MatchLink, error) {
	if req.Confidence < 0 || req.Confidence > 1 {
		return model.MatchLink{}, ErrInvalidConfidence
	}

	s, err := ps.GetSightingByID(ctx, req.SightingID)
	if err != nil {
		return model.MatchLink{}, err
	}
	c, err := ps.GetCaseByID(ctx, req.CaseID)
	if err != nil {
		return model.MatchLink{}, err
	}

	var link model.MatchLink
	err = ps.db.RunInTx(ctx, func(tx pgx.Tx) error {
		// Upsert: a live link for the pair is updated, not duplicated.
		row := tx.QueryRow(ctx, `
            UPDATE match_links
            SET match_confidence = $1, match_type = $2,
                match_reason = CASE WHEN $3 = '' THEN match_reason ELSE $3 END,
                updated_at = NOW()
            WHERE sighting_id = $4 AND case_id = $5 AND status <> 'Rejected'
            RETURNING`+linkColumns+`
        `, req.Confidence, req.MatchType, req.Reason, s.ID, c.ID)

		link, err = scanLink(row)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var distanceKM, deltaHours *float64
		if sc, cc := locationCoord(s.Sighted), locationCoord(c.LastSeen); sc != nil && cc != nil {
			d := match.Distance(*sc, *cc)
			distanceKM = &d
		}
		if !s.SightedDate.IsZero() && !c.LastSeenDate.IsZero() {
			delta := s.SightedDate.Sub(c.LastSeenDate).Hours()
			if delta < 0 {
				delta = -delta
			}
			deltaHours = &delta
		}

		row = tx.QueryRow(ctx, `
            INSERT INTO match_links (
                id, sighting_id, case_id, match_confidence, match_type, match_reason,
                status, distance_km, time_delta_hours, created_by
            ) VALUES ($1, $2, $3, $4, $5, $6, 'Potential', $7, $8, $9)
            RETURNING`+linkColumns+`
        `, uuid.New(), s.ID, c.ID, req.Confidence, req.MatchType, req.Reason,
			distanceKM, deltaHours, req.CreatedBy)

		link, err = scanLink(row)
		return err
	})
	if err != nil {
		return model.MatchLink{}, err
	}
	return link, nil
}

func (ps *PostgresStore) ConfirmMatch(ctx context.Context, linkID, confirmedBy string) (model.MatchLink, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return model.MatchLink{}, ErrLinkNotFound
	}

	row := ps.db.Pool().QueryRow(ctx, `
        UPDATE match_links
        SET status = 'Confirmed', confirmed = TRUE, confirmed_by = $1,
            confirmed_at = NOW(), updated_at = NOW()
        WHERE id = $2 AND status NOT IN ('Confirmed', 'Rejected')
        RETURNING`+linkColumns+`
    `, confirmedBy, id)

	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchLink{}, ps.linkUpdateFailure(ctx, id)
	}
	return link, err
}

func (ps *PostgresStore) RejectMatch(ctx context.Context, linkID string) (model.MatchLink, error) {
	id, err := uuid.Parse(linkID)
	if err != nil {
		return model.MatchLink{}, ErrLinkNotFound
	}

	row := ps.db.Pool().QueryRow(ctx, `
        UPDATE match_links
        SET status = 'Rejected', confirmed = FALSE, updated_at = NOW()
        WHERE id = $1 AND status NOT IN ('Confirmed', 'Rejected')
        RETURNING`+linkColumns+`
    `, id)

	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.MatchLink{}, ps.linkUpdateFailure(ctx, id)
	}
	return link, err
}

// linkUpdateFailure distinguishes "no such link" from "link already
// terminal" after a guarded update matched nothing.
func (ps *PostgresStore) linkUpdateFailure(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := ps.db.Pool().QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM match_links WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrLinkNotFound
	}
	return ErrLinkTerminal
}

func (ps *PostgresStore) GetLinkedCaseForSighting(ctx context.Context, sightingID string) (*model.MatchLink, error) {
	id, err := uuid.Parse(sightingID)
	if err != nil {
		return nil, ErrSightingNotFound
	}
	if _, err := ps.GetSightingByID(ctx, sightingID); err != nil {
		return nil, err
	}

	row := ps.db.Pool().QueryRow(ctx, `
        SELECT`+linkColumns+`
        FROM match_links
        WHERE sighting_id = $1 AND status <> 'Rejected'
        ORDER BY match_confidence DESC
        LIMIT 1
    `, id)

	link, err := scanLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// --- video evidence ---

func (ps *PostgresStore) GetVideoEvidenceForCase(ctx context.Context, caseID string) ([]model.VideoAnalysisResult, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return nil, ErrCaseNotFound
	}
	if _, err := ps.GetCaseByID(ctx, caseID); err != nil {
		return nil, err
	}

	rows, err := ps.db.Pool().Query(ctx, `
        SELECT ts, latitude, longitude, address, distance_from_last_seen,
               video_url, confidence_score, ai_description, camera_id, camera_type
        FROM video_evidence
        WHERE case_id = $1
        ORDER BY ts
    `, id)
	if err != nil {
		return nil, fmt.Errorf("querying video evidence: %w", err)
	}
	defer rows.Close()

	var results []model.VideoAnalysisResult
	for rows.Next() {
		var ev model.VideoAnalysisResult
		if err := rows.Scan(
			&ev.Timestamp, &ev.Latitude, &ev.Longitude, &ev.Address, &ev.DistanceFromLastSeen,
			&ev.VideoURL, &ev.ConfidenceScore, &ev.AIDescription, &ev.CameraID, &ev.CameraType,
		); err != nil {
			return nil, fmt.Errorf("scanning video evidence: %w", err)
		}
		results = append(results, ev)
	}
	return results, rows.Err()
}

func (ps *PostgresStore) AddVideoEvidence(ctx context.Context, caseID string, results []model.VideoAnalysisResult) (int, error) {
	id, err := uuid.Parse(caseID)
	if err != nil {
		return 0, ErrCaseNotFound
	}
	if _, err := ps.GetCaseByID(ctx, caseID); err != nil {
		return 0, err
	}

	added := 0
	err = ps.db.RunInTx(ctx, func(tx pgx.Tx) error {
		for _, ev := range results {
			tag, err := tx.Exec(ctx, `
                INSERT INTO video_evidence (
                    case_id, ts, latitude, longitude, address, distance_from_last_seen,
                    video_url, confidence_score, ai_description, camera_id, camera_type
                ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
                ON CONFLICT (case_id, camera_id, ts) DO NOTHING
            `, id, ev.Timestamp, ev.Latitude, ev.Longitude, ev.Address, ev.DistanceFromLastSeen,
				ev.VideoURL, ev.ConfidenceScore, ev.AIDescription, ev.CameraID, ev.CameraType)
			if err != nil {
				return err
			}
			added += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
