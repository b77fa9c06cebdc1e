package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var yearPattern = regexp.MustCompile(`(\d{4})`)

// leagueSize caps the team columns read from a sheet; anything to the right
// is scratch work.
const leagueSize = 10

var headerCells = map[string]bool{
	"Position": true,
	"Player":   true,
	"$":        true,
}

// YearFromFilename extracts the season from names like JuniorLeague2025.csv.
func YearFromFilename(path string) (int, bool) {
	m := yearPattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return year, true
}

// LastName handles "Last, First" and "First Last".
func LastName(player string) string {
	player = strings.TrimSpace(player)
	if player == "" {
		return ""
	}
	if last, _, ok := strings.Cut(player, ","); ok {
		return strings.TrimSpace(last)
	}
	parts := strings.Fields(player)
	return parts[len(parts)-1]
}

// ParseWideCSV reads the league's auction spreadsheet. Row 0 holds team
// names, row 1 the headers, then one row per roster slot laid out as
// Position, Player, $, Player, $, ... with one pair per team. Parsing stops at
// the SPENT totals row.
func ParseWideCSV(r io.Reader, year int) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	teamRow, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading team row: %w", err)
	}
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	sheet := &Sheet{}
	for i, cell := range teamRow {
		if i == 0 {
			cell = strings.TrimPrefix(cell, "\ufeff")
		}
		cell = strings.TrimSpace(cell)
		if cell != "" && !headerCells[cell] && len(sheet.Teams) < leagueSize {
			sheet.Teams = append(sheet.Teams, cell)
		}
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading data row: %w", err)
		}
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if strings.Contains(row[0], "SPENT") {
			break
		}

		position := strings.TrimSpace(row[0])
		for teamIdx := range sheet.Teams {
			col := 1 + teamIdx*2
			if col+1 >= len(row) {
				break
			}

			player := strings.TrimSpace(row[col])
			if player == "" {
				continue
			}
			salary, err := strconv.Atoi(strings.TrimSpace(row[col+1]))
			if err != nil {
				continue
			}

			sheet.Rows = append(sheet.Rows, Row{
				Year:     year,
				Position: position,
				Player:   player,
				LastName: LastName(player),
				Salary:   salary,
				TeamIdx:  teamIdx,
			})
		}
	}

	return sheet, nil
}
