package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
)

// readCSV reads a CSV export of the order sheet. Ragged rows are allowed.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %q: %w", path, err)
	}

	return rows, nil
}
