package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"wanderlust/internal/domains/listing/model"
	"wanderlust/internal/domains/listing/repository"
)

// Sheet columns, matched case-insensitively against the header row.
// longitude and latitude are optional.
const (
	colTitle       = "title"
	colDescription = "description"
	colImageURL    = "image_url"
	colPrice       = "price"
	colLocation    = "location"
	colCountry     = "country"
	colCategory    = "category"
	colLongitude   = "longitude"
	colLatitude    = "latitude"
)

var requiredColumns = []string{colTitle, colDescription, colPrice, colLocation, colCountry, colCategory}

// RowError explains why a sheet row was skipped. Row is 1-based as shown in
// spreadsheet apps.
type RowError struct {
	Row int
	Err error
}

type ImportReport struct {
	Imported int
	Skipped  []RowError
}

// SheetImporter loads listings from the first sheet of an .xlsx workbook.
type SheetImporter struct {
	repo repository.RepositoryInterface
	now  func() time.Time
}

func NewSheetImporter(repo repository.RepositoryInterface) *SheetImporter {
	return &SheetImporter{repo: repo, now: time.Now}
}

// Import creates one listing per valid row, owned by ownerID. Invalid rows are
// reported and skipped; a database error stops the import.
func (im *SheetImporter) Import(ctx context.Context, r io.Reader, ownerID uuid.UUID) (ImportReport, error) {
	var report ImportReport

	f, err := excelize.OpenReader(r)
	if err != nil {
		return report, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return report, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return report, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return report, nil
	}

	// STEP 1: header
	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return report, fmt.Errorf("missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	// STEP 2: rows
	for n, row := range rows[1:] {
		rowNum := n + 2
		if isBlankRow(row) {
			continue
		}

		form := model.ListingForm{
			Title:       cell(row, colTitle),
			Description: cell(row, colDescription),
			Price:       cell(row, colPrice),
			Location:    cell(row, colLocation),
			Country:     cell(row, colCountry),
			Category:    cell(row, colCategory),
		}
		form.Normalize()
		if err := form.Validate(); err != nil {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Err: err})
			continue
		}

		geometry, err := parseGeometry(cell(row, colLongitude), cell(row, colLatitude))
		if err != nil {
			report.Skipped = append(report.Skipped, RowError{Row: rowNum, Err: err})
			continue
		}

		now := im.now()
		l := &model.Listing{
			ID:        uuid.New(),
			Image:     model.Image{URL: strings.TrimSpace(cell(row, colImageURL))},
			Geometry:  geometry,
			OwnerID:   ownerID,
			ReviewIDs: []uuid.UUID{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		form.Apply(l)

		if err := im.repo.Create(ctx, l); err != nil {
			return report, fmt.Errorf("row %d: %w", rowNum, err)
		}
		report.Imported++
	}

	return report, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseGeometry accepts two empty cells as "not geocoded".
func parseGeometry(lon, lat string) (model.Geometry, error) {
	lon, lat = strings.TrimSpace(lon), strings.TrimSpace(lat)
	if lon == "" && lat == "" {
		return model.Geometry{}, nil
	}
	x, err := strconv.ParseFloat(lon, 64)
	if err != nil || x < -180 || x > 180 {
		return model.Geometry{}, fmt.Errorf("invalid longitude %q", lon)
	}
	y, err := strconv.ParseFloat(lat, 64)
	if err != nil || y < -90 || y > 90 {
		return model.Geometry{}, fmt.Errorf("invalid latitude %q", lat)
	}
	return model.Geometry{Longitude: x, Latitude: y}, nil
}
