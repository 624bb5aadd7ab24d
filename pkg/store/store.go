// Package store defines the storage capabilities the linkage engine
// consumes: profile reads plus field-level writes of the engine-owned
// derived fields, and full ownership of linkage records.
package store

import (
	"context"
	"time"

	"github.com/argus-intel/argus/backend/pkg/common"
)

// DerivedFields are the five engine-owned profile fields written during the
// per-profile rollup. The engine never writes any other profile content.
type DerivedFields struct {
	SuspicionScore   int
	IsSuspicious     bool
	LinkageCount     int
	SuspicionReasons []string
	LastAnalyzed     time.Time
}

// ProfileStore is the profile-read and derived-field-write capability
// provided by the profile-storage collaborator.
type ProfileStore interface {
	ListActive(ctx context.Context) ([]common.Profile, error)
	GetByID(ctx context.Context, id string) (*common.Profile, error)
	UpdateDerived(ctx context.Context, id string, fields DerivedFields) error
}

// LinkageStore persists detected linkages. Upsert must keep at most one
// active linkage per unordered profile pair; implementations receive the
// pair already in canonical order.
type LinkageStore interface {
	Upsert(ctx context.Context, l common.Linkage) error
	FindByProfile(ctx context.Context, profileID string) ([]common.Linkage, error)
	FindStrongByProfile(ctx context.Context, profileID string, minStrength int) ([]common.Linkage, error)
	ListActive(ctx context.Context) ([]common.Linkage, error)
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}
