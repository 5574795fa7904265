package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"prison-records/internal/importer"
	"prison-records/internal/sheet"
	"prison-records/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importAI     bool
	importOut    string
	importCommit bool
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Normalize a CSV or XLSX file and write the records out",
	Long: `Reads a spreadsheet, normalizes every row the same way the import endpoint
does, and writes the resulting records as CSV (or XLSX when --out ends in .xlsx).
With --commit the records are appended to the configured store as well.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importAI, "ai", false, "map columns with the language model")
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "output file (default stdout)")
	importCmd.Flags().BoolVar(&importCommit, "commit", false, "append the records to the configured store")
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	im := a.importer
	if !importCommit {
		// scratch store so ids and serial numbers are still assigned
		scratch := *im
		scratch.Store = store.NewMemoryStore(store.Options{Location: a.cfg.Location()})
		im = &scratch
	}

	mode := importer.ModeNormal
	if importAI {
		mode = importer.ModeAI
	}
	sum, err := im.ImportFile(cmd.Context(), filepath.Base(args[0]), data, mode)
	if err != nil {
		return err
	}
	if len(sum.Records) == 0 {
		return fmt.Errorf("nothing to export")
	}

	var w io.Writer = cmd.OutOrStdout()
	if importOut != "" {
		f, err := os.Create(importOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", importOut, err)
		}
		defer f.Close()
		w = f
	}

	if strings.EqualFold(filepath.Ext(importOut), ".xlsx") {
		err = sheet.WriteXLSX(w, sum.Records)
	} else {
		err = sheet.WriteCSV(w, sum.Records)
	}
	if err != nil {
		return err
	}

	a.logger.Info("import finished",
		zap.String("file", args[0]),
		zap.Int("records", sum.Imported),
		zap.Int("dropped", sum.Dropped),
		zap.Bool("committed", importCommit))
	return nil
}
