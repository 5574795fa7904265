// Package store holds the authoritative prisoner collection. Every mutation
// returns the snapshot it produced so callers never read shared state behind
// the store's back.
package store

import (
	"context"
	"errors"
	"time"

	"prison-records/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no record has the requested id.
var ErrNotFound = errors.New("store: record not found")

// Snapshot is a copy of the collection in insertion (sNo) order.
type Snapshot []models.Prisoner

// MaxSNo returns the largest serial number in s, or 0.
func (s Snapshot) MaxSNo() int {
	max := 0
	for i := range s {
		if s[i].SNo > max {
			max = s[i].SNo
		}
	}
	return max
}

// Store is the record store contract shared by the memory and sqlite backends.
type Store interface {
	// All returns the current snapshot.
	All(ctx context.Context) (Snapshot, error)
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (models.Prisoner, error)
	// Add creates one record with a fresh id, the next sNo and today's status date.
	Add(ctx context.Context, in models.PrisonerInput) (models.Prisoner, Snapshot, error)
	// AppendBatch assigns ids and consecutive sNo values to recs and commits
	// them together. Either every record is appended or none is.
	AppendBatch(ctx context.Context, recs []models.Prisoner) ([]models.Prisoner, Snapshot, error)
	// Update replaces the editable fields of a record, keeping id and sNo and
	// refreshing statusUpdateDate.
	Update(ctx context.Context, id string, in models.PrisonerInput) (models.Prisoner, Snapshot, error)
}

// Options configures the clock and id source of a store.
type Options struct {
	Location *time.Location
	NewID    func() string
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) today() string {
	return o.Now().In(o.Location).Format("2006-01-02")
}

// assign stamps ids and serial numbers onto recs starting after maxSNo.
func (o Options) assign(recs []models.Prisoner, maxSNo int) []models.Prisoner {
	out := make([]models.Prisoner, len(recs))
	for i := range recs {
		maxSNo++
		out[i] = recs[i]
		out[i].ID = o.NewID()
		out[i].SNo = maxSNo
		if out[i].StatusUpdateDate == "" {
			out[i].StatusUpdateDate = o.today()
		}
	}
	return out
}

func (o Options) newRecord(in models.PrisonerInput, sNo int) models.Prisoner {
	p := models.Prisoner{ID: o.NewID(), SNo: sNo}
	p.Apply(in.Normalize(), o.today())
	return p
}
