package steps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/andrescamacho/citysim-go/internal/domain/shared"
)

// parsePositions parses a "x,y; x,y" list
func parsePositions(list string) ([]shared.Position, error) {
	var out []shared.Position
	for _, part := range strings.Split(list, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		p, err := shared.ParsePosition(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func expectEqual[T comparable](what string, expected, actual T) error {
	if expected != actual {
		return fmt.Errorf("expected %s to be %v, got %v", what, expected, actual)
	}
	return nil
}

// cellValue returns the cell under columnName, using the first row as the header
func cellValue(table *godog.Table, row *messages.PickleTableRow, columnName string) (string, error) {
	for i, cell := range table.Rows[0].Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i].Value), nil
		}
	}
	return "", fmt.Errorf("table has no column %q", columnName)
}

func cellUint32(table *godog.Table, row *messages.PickleTableRow, columnName string) (uint32, error) {
	raw, err := cellValue(table, row, columnName)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", columnName, err)
	}
	return uint32(v), nil
}
