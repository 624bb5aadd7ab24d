package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/argus-intel/argus/backend/internal/util"
	"github.com/argus-intel/argus/backend/pkg/common"
)

const upsertLinkageSQL = `
INSERT INTO linkages (id, profile1, profile2, connection_type, matched_fields, strength, suspicion_score, details, is_active, last_analyzed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9)
ON CONFLICT (profile1, profile2) DO UPDATE
SET connection_type = EXCLUDED.connection_type,
    matched_fields  = EXCLUDED.matched_fields,
    strength        = EXCLUDED.strength,
    suspicion_score = EXCLUDED.suspicion_score,
    details         = EXCLUDED.details,
    is_active       = true,
    last_analyzed   = EXCLUDED.last_analyzed;
`

const findLinkagesByProfileSQL = `
SELECT id, profile1, profile2, connection_type, matched_fields, strength, suspicion_score, details, is_active, last_analyzed
FROM linkages
WHERE is_active = true AND (profile1 = $1 OR profile2 = $1)
ORDER BY suspicion_score DESC, profile1, profile2;
`

const findStrongLinkagesByProfileSQL = `
SELECT id, profile1, profile2, connection_type, matched_fields, strength, suspicion_score, details, is_active, last_analyzed
FROM linkages
WHERE is_active = true AND strength >= $2 AND (profile1 = $1 OR profile2 = $1)
ORDER BY strength DESC, profile1, profile2;
`

const listActiveLinkagesSQL = `
SELECT id, profile1, profile2, connection_type, matched_fields, strength, suspicion_score, details, is_active, last_analyzed
FROM linkages
WHERE is_active = true
ORDER BY profile1, profile2;
`

const deleteStaleLinkagesSQL = `
DELETE FROM linkages
WHERE is_active = false AND last_analyzed < $1;
`

// Upsert writes the single active linkage for an unordered profile pair.
// The pair is canonicalized before the write, so the UNIQUE(profile1,
// profile2) constraint covers both orientations.
func (s *LinkageStorage) Upsert(ctx context.Context, l common.Linkage) error {
	l.Profile1, l.Profile2 = common.CanonicalPair(l.Profile1, l.Profile2)
	if l.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return err
		}
		l.ID = id
	}
	if l.LastAnalyzed.IsZero() {
		l.LastAnalyzed = time.Now().UTC()
	}

	matched, err := json.Marshal(l.MatchedFields)
	if err != nil {
		return fmt.Errorf("encode matched fields: %w", err)
	}

	_, err = s.conn.Exec(ctx, upsertLinkageSQL,
		l.ID,
		l.Profile1,
		l.Profile2,
		l.ConnectionType,
		matched,
		l.Strength,
		l.SuspicionScore,
		util.SanitizePostgresText(l.Details),
		l.LastAnalyzed,
	)
	if err != nil {
		return fmt.Errorf("upsert linkage %s/%s: %w", l.Profile1, l.Profile2, err)
	}
	return nil
}

// FindByProfile returns every active linkage touching a profile, in either
// stored orientation.
func (s *LinkageStorage) FindByProfile(ctx context.Context, profileID string) ([]common.Linkage, error) {
	return s.queryLinkages(ctx, findLinkagesByProfileSQL, profileID)
}

// FindStrongByProfile returns active linkages touching a profile with
// strength at or above minStrength.
func (s *LinkageStorage) FindStrongByProfile(ctx context.Context, profileID string, minStrength int) ([]common.Linkage, error) {
	return s.queryLinkages(ctx, findStrongLinkagesByProfileSQL, profileID, minStrength)
}

// ListActive returns every active linkage.
func (s *LinkageStorage) ListActive(ctx context.Context) ([]common.Linkage, error) {
	return s.queryLinkages(ctx, listActiveLinkagesSQL)
}

// DeleteStale removes linkages that are already inactive and were last
// analyzed before the cutoff. It returns the number of deleted rows.
func (s *LinkageStorage) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.conn.Exec(ctx, deleteStaleLinkagesSQL, olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete stale linkages: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *LinkageStorage) queryLinkages(ctx context.Context, sql string, args ...any) ([]common.Linkage, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query linkages: %w", err)
	}
	defer rows.Close()

	var linkages []common.Linkage
	for rows.Next() {
		var (
			l       common.Linkage
			matched []byte
		)
		err := rows.Scan(
			&l.ID,
			&l.Profile1,
			&l.Profile2,
			&l.ConnectionType,
			&matched,
			&l.Strength,
			&l.SuspicionScore,
			&l.Details,
			&l.IsActive,
			&l.LastAnalyzed,
		)
		if err != nil {
			return nil, err
		}
		if len(matched) > 0 {
			if err := json.Unmarshal(matched, &l.MatchedFields); err != nil {
				return nil, fmt.Errorf("decode matched fields for linkage %s: %w", l.ID, err)
			}
		}
		linkages = append(linkages, l)
	}
	return linkages, rows.Err()
}
