package store

import (
	"context"
	"errors"
	"fmt"

	"prison-records/internal/models"

	"gorm.io/gorm"
)

// GormStore keeps records in a sqlite table through gorm. Batch appends run
// inside one transaction.
type GormStore struct {
	DB   *gorm.DB
	opts Options
}

// NewGormStore expects the prisoners table to be migrated already.
func NewGormStore(db *gorm.DB, opts Options) *GormStore {
	return &GormStore{DB: db, opts: opts.withDefaults()}
}

func (s *GormStore) All(ctx context.Context) (Snapshot, error) {
	var out []models.Prisoner
	if err := s.DB.WithContext(ctx).Order("s_no ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list prisoners: %w", err)
	}
	return Snapshot(out), nil
}

func (s *GormStore) Get(ctx context.Context, id string) (models.Prisoner, error) {
	var p models.Prisoner
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Prisoner{}, ErrNotFound
		}
		return models.Prisoner{}, fmt.Errorf("get prisoner: %w", err)
	}
	return p, nil
}

func maxSNo(tx *gorm.DB) (int, error) {
	var max int
	if err := tx.Model(&models.Prisoner{}).Select("COALESCE(MAX(s_no), 0)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("max s_no: %w", err)
	}
	return max, nil
}

func (s *GormStore) Add(ctx context.Context, in models.PrisonerInput) (models.Prisoner, Snapshot, error) {
	var p models.Prisoner
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := maxSNo(tx)
		if err != nil {
			return err
		}
		p = s.opts.newRecord(in, max+1)
		return tx.Create(&p).Error
	})
	if err != nil {
		return models.Prisoner{}, nil, fmt.Errorf("add prisoner: %w", err)
	}
	snap, err := s.All(ctx)
	return p, snap, err
}

func (s *GormStore) AppendBatch(ctx context.Context, recs []models.Prisoner) ([]models.Prisoner, Snapshot, error) {
	var added []models.Prisoner
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := maxSNo(tx)
		if err != nil {
			return err
		}
		added = s.opts.assign(recs, max)
		if len(added) == 0 {
			return nil
		}
		return tx.CreateInBatches(&added, 100).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("append prisoners: %w", err)
	}
	snap, err := s.All(ctx)
	return added, snap, err
}

func (s *GormStore) Update(ctx context.Context, id string, in models.PrisonerInput) (models.Prisoner, Snapshot, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return models.Prisoner{}, nil, err
	}
	p.Apply(in.Normalize(), s.opts.today())
	if err := s.DB.WithContext(ctx).Save(&p).Error; err != nil {
		return models.Prisoner{}, nil, fmt.Errorf("update prisoner: %w", err)
	}
	snap, err := s.All(ctx)
	return p, snap, err
}
