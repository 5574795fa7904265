package importer

import (
	"context"
	"errors"
	"fmt"

	"prison-records/internal/logging"
	"prison-records/internal/models"
	"prison-records/internal/sheet"
	"prison-records/internal/store"
	"prison-records/internal/textgen"

	"go.uber.org/zap"
)

var (
	// ErrEmptyFile is returned when the uploaded sheet has no data rows.
	ErrEmptyFile = errors.New("file is empty or could not be read")
	// ErrNoValidRecords is returned when the AI path leaves nothing to commit.
	ErrNoValidRecords = errors.New("no valid records: ensure convict number, name, and admission date are present")
)

// OpReadFile marks a CapabilityError raised while parsing the upload.
const OpReadFile = "read file"

// Mode selects the normalization strategy.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeAI     Mode = "ai"
)

// Summary describes a committed import.
type Summary struct {
	Mode     Mode              `json:"mode"`
	Imported int               `json:"imported"`
	Dropped  int               `json:"dropped"`
	Records  []models.Prisoner `json:"records"`
}

// Importer normalizes rows and appends them to the store in one batch.
type Importer struct {
	Store      store.Store
	Normalizer *Normalizer
	AI         *AINormalizer
	Logger     *zap.Logger
}

// Import runs the deterministic path. The first invalid row aborts the
// whole file and nothing is stored.
func (im *Importer) Import(ctx context.Context, rows []sheet.Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrEmptyFile
	}
	recs, err := im.Normalizer.NormalizeRows(rows)
	if err != nil {
		logging.OrNop(im.Logger).Warn("import rejected", zap.Error(err))
		return Summary{}, err
	}
	return im.commit(ctx, ModeNormal, recs, 0)
}

// ImportWithAI runs the AI-assisted path. Entries missing required data are
// dropped one by one; a failed model call aborts with nothing stored.
func (im *Importer) ImportWithAI(ctx context.Context, rows []sheet.Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrEmptyFile
	}
	if im.AI == nil {
		return Summary{}, errors.New("ai import is not configured")
	}
	recs, dropped, err := im.AI.NormalizeRowsWithAI(ctx, rows)
	if err != nil {
		return Summary{}, err
	}
	if len(recs) == 0 {
		return Summary{Mode: ModeAI, Dropped: dropped}, ErrNoValidRecords
	}
	return im.commit(ctx, ModeAI, recs, dropped)
}

// ImportFile parses an uploaded file and imports it with the given mode. A
// file that cannot be parsed is reported as a *textgen.CapabilityError with
// Op set to OpReadFile.
func (im *Importer) ImportFile(ctx context.Context, name string, data []byte, mode Mode) (Summary, error) {
	rows, err := sheet.Parse(name, data)
	if err != nil {
		return Summary{}, &textgen.CapabilityError{Op: OpReadFile, Err: err}
	}
	if mode == ModeAI {
		return im.ImportWithAI(ctx, rows)
	}
	return im.Import(ctx, rows)
}

func (im *Importer) commit(ctx context.Context, mode Mode, recs []models.Prisoner, dropped int) (Summary, error) {
	added, _, err := im.Store.AppendBatch(ctx, recs)
	if err != nil {
		return Summary{}, fmt.Errorf("commit import: %w", err)
	}
	logging.OrNop(im.Logger).Info("import committed",
		zap.String("mode", string(mode)),
		zap.Int("imported", len(added)),
		zap.Int("dropped", dropped))
	return Summary{Mode: mode, Imported: len(added), Dropped: dropped, Records: added}, nil
}
