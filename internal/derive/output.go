package derive

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/draymottishaw/college-assisted-explorer/internal/metrics"
)

// Header returns the output column names in order.
func Header() []string {
	header := []string{"Player", "Team"}
	for _, c := range metrics.Columns {
		header = append(header, c.Name)
	}
	return append(header, "Role", "Year", "Position", "player_lower")
}

// WriteCSV writes one row per player with every derived column. Missing
// values are written as empty cells.
func WriteCSV(w io.Writer, rows []metrics.CareerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}

	record := make([]string, 0, len(metrics.Columns)+6)
	for i := range rows {
		row := &rows[i]
		record = record[:0]
		record = append(record, row.Player, row.Team)
		for _, c := range metrics.Columns {
			v, ok := c.Get(row)
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, row.Role.String, row.Year.String, row.Position.String, row.Key.String())

		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile(path string, rows []metrics.CareerRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
