// Package csvdir loads supply and target catalogs from a directory of CSV
// exports. It exists for offline runs and fixtures: a directory holding
// supply.csv, targets.csv and pricing.csv stands in for the live spreadsheet
// and target-store connections.
package csvdir

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
)

// Default file names inside the source directory.
const (
	SupplyFile  = "supply.csv"
	TargetsFile = "targets.csv"
	PricingFile = "pricing.csv"
)

// dateLayout is the effective-date format in pricing.csv.
const dateLayout = "2006-01-02"

// Source reads catalogs from CSV files in one directory. It implements both
// provider interfaces.
type Source struct {
	dir string
}

// New creates a CSV-directory source rooted at dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Fetch reads supply.csv and returns its rows, scrubbed and optionally
// filtered by category. Every cell is cleaned before parsing; spreadsheet
// exports leak control characters, formula escapes and stray quotes.
func (s *Source) Fetch(_ context.Context, categories []string) ([]catalog.SupplyVariant, error) {
	path := filepath.Join(s.dir, SupplyFile)
	rows, header, err := readCSV(path)
	if err != nil {
		// A directory without a supply export is a distinct failure; callers
		// report it as "nothing to sync" rather than a broken file.
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewNotFoundError("supply export", path)
		}
		return nil, err
	}

	want := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		want[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}

	variants := make([]catalog.SupplyVariant, 0, len(rows))
	for i, row := range rows {
		category := header.get(row, "category")
		if len(want) > 0 {
			if _, ok := want[strings.ToLower(category)]; !ok {
				continue
			}
		}

		variant := catalog.SupplyVariant{
			Category:    category,
			Field1:      header.get(row, "field1"),
			Field2:      header.get(row, "field2"),
			Field3:      header.get(row, "field3"),
			ExternalRef: header.get(row, "external_ref"),
			RawPrice:    header.get(row, "price"),
		}

		if raw := header.get(row, "width"); raw != "" {
			width, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.NewParseError("csv", path, fmt.Sprintf("row %d: invalid width %q", i+2, raw), err)
			}
			variant.Width = &width
		}

		variants = append(variants, variant)
	}
	return variants, nil
}

// Load reads targets.csv and pricing.csv. Target records are filtered to the
// requested groups; pricing is filtered to the identifiers of the loaded
// records, matching how a real target store scopes its pricing query.
func (s *Source) Load(_ context.Context, groups []catalog.GroupID) ([]catalog.TargetRecord, []catalog.PricingRecord, error) {
	records, err := s.loadTargets(groups)
	if err != nil {
		return nil, nil, err
	}

	owned := make(map[string]struct{}, len(records))
	for _, rec := range records {
		owned[rec.Identifier] = struct{}{}
	}

	prices, err := s.loadPricing(owned)
	if err != nil {
		return nil, nil, err
	}
	return records, prices, nil
}

func (s *Source) loadTargets(groups []catalog.GroupID) ([]catalog.TargetRecord, error) {
	path := filepath.Join(s.dir, TargetsFile)
	rows, header, err := readCSV(path)
	if err != nil {
		return nil, err
	}

	want := make(map[catalog.GroupID]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}

	records := make([]catalog.TargetRecord, 0, len(rows))
	for _, row := range rows {
		groupID := catalog.GroupID(header.get(row, "group"))
		if len(want) > 0 {
			if _, ok := want[groupID]; !ok {
				continue
			}
		}

		records = append(records, catalog.TargetRecord{
			GroupID:      groupID,
			Identifier:   header.get(row, "identifier"),
			ExternalRef:  header.get(row, "external_ref"),
			Field1:       header.get(row, "field1"),
			Field2:       header.get(row, "field2"),
			Field3:       header.get(row, "field3"),
			Active:       parseBool(header.get(row, "active")),
			StatusNote:   header.get(row, "status_note"),
			PriceGridRef: header.get(row, "price_grid"),
			CostGridRef:  header.get(row, "cost_grid"),
			DiscountRef:  header.get(row, "discount"),
			RowRef:       header.get(row, "row_ref"),
		})
	}
	return records, nil
}

func (s *Source) loadPricing(owned map[string]struct{}) ([]catalog.PricingRecord, error) {
	path := filepath.Join(s.dir, PricingFile)
	rows, header, err := readCSV(path)
	if err != nil {
		// Pricing history is optional; a directory without it still works
		// for grid-priced groups.
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	prices := make([]catalog.PricingRecord, 0, len(rows))
	for i, row := range rows {
		identifier := header.get(row, "identifier")
		if _, ok := owned[identifier]; !ok {
			continue
		}

		date, err := utc.Parse(dateLayout, header.get(row, "date_effective"))
		if err != nil {
			return nil, errors.NewParseError("csv", path, fmt.Sprintf("row %d: invalid date", i+2), err)
		}
		cost, err := decimal.NewFromString(header.get(row, "cost"))
		if err != nil {
			return nil, errors.NewParseError("csv", path, fmt.Sprintf("row %d: invalid cost", i+2), err)
		}
		sell, err := decimal.NewFromString(header.get(row, "sell"))
		if err != nil {
			return nil, errors.NewParseError("csv", path, fmt.Sprintf("row %d: invalid sell", i+2), err)
		}

		prices = append(prices, catalog.PricingRecord{
			Identifier:    identifier,
			DateEffective: date,
			CostAmount:    cost,
			SellAmount:    sell,
		})
	}
	return prices, nil
}

// columns maps lower-cased header names to column positions.
type columns map[string]int

// get returns the cleaned cell under the named column, or "" when the column
// is absent or the row is short.
func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return catalog.CleanValue(row[idx])
}

func readCSV(path string) ([][]string, columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // exports are ragged, short rows read as empty cells

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.NewParseError("csv", path, "malformed csv", err)
	}
	if len(all) == 0 {
		return nil, columns{}, nil
	}

	header := make(columns, len(all[0]))
	for i, name := range all[0] {
		header[strings.ToLower(catalog.CleanValue(name))] = i
	}
	return all[1:], header, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}
