// Package importer reads the spreadsheet export of a previous edition.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/daniel-lerner/lerners-game-tournament/models"
)

// DefaultPointsColumn is the zero-based column holding the final points of a player.
const DefaultPointsColumn = 12

var ErrEmptyImport = errors.New("csv has no data rows")

type LegacyOptions struct {
	Edition      string
	PointsColumn int
}

// ParseLegacyCSV turns a semicolon separated export into players of opts.Edition.
// The first row is a header. Column 0 is the name and opts.PointsColumn the total
// points; unreadable points count as 0 and rows without a name are dropped. Imported
// players never have matches or wins.
func ParseLegacyCSV(r io.Reader, opts LegacyOptions) ([]models.Player, error) {
	if opts.PointsColumn < 0 {
		return nil, fmt.Errorf("invalid points column %d", opts.PointsColumn)
	}
	if strings.TrimSpace(opts.Edition) == "" {
		return nil, errors.New("edition is required")
	}

	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyImport
	}

	players := make([]models.Player, 0, len(records)-1)
	for _, record := range records[1:] {
		name := strings.TrimSpace(strings.TrimPrefix(readValue(record, 0), "\ufeff"))
		if name == "" {
			continue
		}
		players = append(players, models.Player{
			Name:        name,
			EditionID:   opts.Edition,
			TotalPoints: leadingInt(readValue(record, opts.PointsColumn)),
		})
	}
	if len(players) == 0 {
		return nil, ErrEmptyImport
	}
	return players, nil
}

func readValue(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// leadingInt reads the integer prefix of value ("42 pts" is 42). Anything without
// digits, and negative totals, become 0.
func leadingInt(value string) int {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digits := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
