package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-confirm/core"
)

type ProfileStore struct {
	db *bun.DB
}

func NewProfileStore(db *bun.DB) (*ProfileStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &ProfileStore{db: db}, nil
}

func (s *ProfileStore) GetByOwner(ctx context.Context, ownerID string) (core.Profile, error) {
	if s == nil || s.db == nil {
		return core.Profile{}, fmt.Errorf("sqlstore: profile store is not configured")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return core.Profile{}, fmt.Errorf("sqlstore: owner id is required")
	}

	record := &profileRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return core.Profile{}, core.ErrProfileNotFound
		}
		return core.Profile{}, err
	}
	return record.toDomain(), nil
}

// Upsert exists for hosts provisioning profiles alongside transactions.
func (s *ProfileStore) Upsert(ctx context.Context, profile core.Profile) (core.Profile, error) {
	if s == nil || s.db == nil {
		return core.Profile{}, fmt.Errorf("sqlstore: profile store is not configured")
	}
	ownerID := strings.TrimSpace(profile.OwnerID)
	if ownerID == "" {
		return core.Profile{}, fmt.Errorf("sqlstore: owner id is required")
	}

	record := &profileRecord{
		OwnerID:      ownerID,
		BusinessName: strings.TrimSpace(profile.BusinessName),
		Email:        strings.TrimSpace(profile.Email),
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (owner_id) DO UPDATE").
		Set("business_name = EXCLUDED.business_name").
		Set("email = EXCLUDED.email").
		Exec(ctx)
	if err != nil {
		return core.Profile{}, err
	}
	return s.GetByOwner(ctx, ownerID)
}

var _ core.ProfileStore = (*ProfileStore)(nil)
