package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/drstein77/shoppinglist/internal/models"
)

var ErrInvalidCSV = errors.New("invalid csv")

var csvHeader = []string{"id", "name", "price", "date_added", "checked", "category"}

// WriteCSV writes items with a header row. Times are RFC 3339 in UTC.
func WriteCSV(w io.Writer, items []models.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{
			strconv.FormatInt(it.ID, 10),
			it.Name,
			it.Price,
			it.DateAdded.UTC().Format(time.RFC3339Nano),
			strconv.FormatBool(it.Checked),
			it.Category,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses rows keyed by the header line. The id column is ignored.
// Columns missing from the header, and empty date_added and checked cells,
// are left to the table.
func ReadCSV(r io.Reader) ([]models.NewItem, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(record []string, name string) string {
		if i, ok := index[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	// a column in the header is a supplied value, even when the cell is empty
	text := func(record []string, name string) *string {
		if _, ok := index[name]; !ok {
			return nil
		}
		v := cell(record, name)
		return &v
	}

	var items []models.NewItem
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
		}

		item := models.NewItem{
			Name:     text(record, "name"),
			Price:    text(record, "price"),
			Category: text(record, "category"),
		}

		if v := cell(record, "date_added"); v != "" {
			t, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: date_added: %v", ErrInvalidCSV, line, err)
			}
			item.DateAdded = &t
		}
		if v := cell(record, "checked"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: checked: %v", ErrInvalidCSV, line, err)
			}
			item.Checked = &b
		}

		items = append(items, item)
	}

	return items, nil
}
