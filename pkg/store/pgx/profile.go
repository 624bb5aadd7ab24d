package pgx

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/argus-intel/argus/backend/pkg/common"
	"github.com/argus-intel/argus/backend/pkg/store"
)

const listActiveProfilesSQL = `
SELECT id, is_active, data, suspicion_score, is_suspicious, linkage_count, suspicion_reasons, last_analyzed
FROM profiles
WHERE is_active = true
ORDER BY id;
`

const getProfileSQL = `
SELECT id, is_active, data, suspicion_score, is_suspicious, linkage_count, suspicion_reasons, last_analyzed
FROM profiles
WHERE id = $1;
`

const updateDerivedSQL = `
UPDATE profiles
SET suspicion_score   = $2,
    is_suspicious     = $3,
    linkage_count     = $4,
    suspicion_reasons = $5,
    last_analyzed     = $6
WHERE id = $1;
`

// ListActive returns a snapshot of every active profile.
func (s *ProfileStorage) ListActive(ctx context.Context) ([]common.Profile, error) {
	rows, err := s.conn.Query(ctx, listActiveProfilesSQL)
	if err != nil {
		return nil, fmt.Errorf("list active profiles: %w", err)
	}
	defer rows.Close()

	var profiles []common.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

// GetByID fetches a single profile by its stable identifier.
func (s *ProfileStorage) GetByID(ctx context.Context, id string) (*common.Profile, error) {
	row := s.conn.QueryRow(ctx, getProfileSQL, id)
	profile, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", id, err)
	}
	return profile, nil
}

// UpdateDerived writes the five engine-owned fields of one profile. Profile
// content in the data column is never touched.
func (s *ProfileStorage) UpdateDerived(ctx context.Context, id string, fields store.DerivedFields) error {
	reasons := fields.SuspicionReasons
	if reasons == nil {
		reasons = []string{}
	}
	_, err := s.conn.Exec(ctx, updateDerivedSQL,
		id,
		fields.SuspicionScore,
		fields.IsSuspicious,
		fields.LinkageCount,
		reasons,
		fields.LastAnalyzed,
	)
	if err != nil {
		return fmt.Errorf("update derived fields for %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*common.Profile, error) {
	var (
		id           string
		isActive     bool
		data         []byte
		score        int
		suspicious   bool
		linkageCount int
		reasons      []string
		lastAnalyzed *time.Time
	)
	if err := row.Scan(&id, &isActive, &data, &score, &suspicious, &linkageCount, &reasons, &lastAnalyzed); err != nil {
		return nil, err
	}

	var profile common.Profile
	if len(data) > 0 {
		if err := json.Unmarshal(data, &profile); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", id, err)
		}
	}

	// Columns win over whatever the document claims.
	profile.ID = id
	profile.IsActive = isActive
	profile.SuspicionScore = score
	profile.IsSuspicious = suspicious
	profile.LinkageCount = linkageCount
	profile.SuspicionReasons = reasons
	if lastAnalyzed != nil {
		profile.LastAnalyzed = *lastAnalyzed
	}
	return &profile, nil
}
