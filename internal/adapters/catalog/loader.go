package catalog

import (
	"context"
	"errors"
	"fmt"
	"order-lookup-service/internal/domain"
	"order-lookup-service/internal/platform/obs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrSheetNotFound     = errors.New("sheet not found")
	ErrEmptyHeader       = errors.New("source has no header row")
	ErrUnsupportedSource = errors.New("unsupported catalog source")
)

// Source locates the order table and the columns operators need to see.
type Source struct {
	Path          string
	Sheet         string
	DisplayFields []string
}

// FileLoader reads the catalog from a spreadsheet or CSV export on disk.
type FileLoader struct {
	Source Source
	Logger *zap.Logger
}

func NewFileLoader(src Source, logger *zap.Logger) *FileLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileLoader{Source: src, Logger: logger}
}

// Load reads every row of the configured sheet as text and builds the
// catalog. Display fields missing from the header are filled with empty
// strings on every row. Any read failure is returned; there is no partial
// catalog.
func (l *FileLoader) Load(ctx context.Context) (_ *domain.Catalog, err error) {
	defer obs.Time(ctx, "catalog.Load")(&err)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	src := l.Source
	if strings.TrimSpace(src.Path) == "" {
		return nil, errors.New("load catalog: source path is empty")
	}

	fields := src.DisplayFields
	if len(fields) == 0 {
		fields = domain.DefaultDisplayFields
	}

	var table [][]string
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		table, err = readXLSX(src.Path, src.Sheet)
	case ".csv":
		table, err = readCSV(src.Path)
	default:
		return nil, fmt.Errorf("load catalog: %w: %q", ErrUnsupportedSource, src.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	rows, missing, err := buildRows(table, fields)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", src.Path, err)
	}

	if len(missing) > 0 {
		l.Logger.Warn("catalog columns missing, filled with empty values",
			zap.String("path", src.Path),
			zap.Strings("columns", missing))
	}
	l.Logger.Info("catalog loaded",
		zap.String("path", src.Path),
		zap.String("sheet", src.Sheet),
		zap.Int("rows", len(rows)))

	return domain.NewCatalog(src.Sheet, fields, rows), nil
}

// buildRows maps a header-first string table onto order rows. It returns the
// display fields that had to be synthesized.
func buildRows(table [][]string, displayFields []string) ([]domain.OrderRow, []string, error) {
	if len(table) == 0 {
		return nil, nil, ErrEmptyHeader
	}

	header := make([]string, len(table[0]))
	present := make(map[string]struct{}, len(header))
	for i, h := range table[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		if h != "" {
			present[h] = struct{}{}
		}
	}
	if len(present) == 0 {
		return nil, nil, ErrEmptyHeader
	}

	var missing []string
	for _, f := range displayFields {
		if _, ok := present[f]; !ok {
			missing = append(missing, f)
		}
	}

	rows := make([]domain.OrderRow, 0, len(table)-1)
	for _, rec := range table[1:] {
		if isBlank(rec) {
			continue
		}

		cells := make(map[string]string, len(header)+len(missing))
		for i, h := range header {
			if h == "" {
				continue
			}
			// Keep the first occurrence of a duplicated header.
			if _, ok := cells[h]; ok {
				continue
			}
			// Cell text is kept verbatim for display.
			if i < len(rec) {
				cells[h] = rec[i]
			} else {
				cells[h] = ""
			}
		}
		for _, f := range missing {
			cells[f] = ""
		}

		rows = append(rows, domain.NewOrderRow(cells))
	}

	return rows, missing, nil
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
