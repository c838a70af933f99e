package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"wanderlust/internal/domains/listing/model"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var header = []any{"Title", "Description", "Image_URL", "Price", "Location", "Country", "Category", "Longitude", "Latitude"}

func TestSheetImporter_Import(t *testing.T) {
	repo := newMemRepo()
	owner := uuid.New()
	buf := workbook(t,
		header,
		[]any{"Cozy Beachfront Cottage", "Sea view", "http://img/1.jpg", "1500", "Malibu", "United States", "Amazing Pools", "-118.78", "34.03"},
		[]any{"Mountain Retreat", "Quiet", "", "1000", "Aspen", "United States", "Mountains"},
		[]any{"", "No title", "", "10", "Paris", "France", "Rooms"},
		[]any{"Free Igloo", "Cold", "", "-3", "Tromso", "Norway", "Arctic"},
		[]any{"Bad Geo", "x", "", "10", "Paris", "France", "Rooms", "west", "1"},
	)

	report, err := NewSheetImporter(repo).Import(context.Background(), buf, owner)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Imported)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, 4, report.Skipped[0].Row)
	assert.Contains(t, report.Skipped[0].Err.Error(), "title cannot be blank")
	assert.Equal(t, 5, report.Skipped[1].Row)
	assert.Contains(t, report.Skipped[1].Err.Error(), "price")
	assert.Equal(t, 6, report.Skipped[2].Row)

	listings := repo.all()
	require.Len(t, listings, 2)
	assert.Equal(t, "Cozy Beachfront Cottage", listings[0].Title)
	assert.Equal(t, model.Geometry{Longitude: -118.78, Latitude: 34.03}, listings[0].Geometry)
	assert.Equal(t, "http://img/1.jpg", listings[0].Image.URL)
	assert.Equal(t, owner, listings[0].OwnerID)
	assert.True(t, listings[1].Geometry.IsOrigin())
	assert.Equal(t, model.CategoryMountains, listings[1].Category)
}

func TestSheetImporter_MissingColumn(t *testing.T) {
	buf := workbook(t, []any{"Title", "Price"})
	_, err := NewSheetImporter(newMemRepo()).Import(context.Background(), buf, uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"description"`)
}

func TestSheetImporter_NotAWorkbook(t *testing.T) {
	_, err := NewSheetImporter(newMemRepo()).Import(context.Background(), strings.NewReader("nope"), uuid.New())
	assert.Error(t, err)
}

func TestSheetImporter_StopsOnDatabaseError(t *testing.T) {
	repo := newMemRepo()
	repo.createErr = errDown
	buf := workbook(t, header, []any{"Cabin", "x", "", "1", "Goa", "India", "Farms"})

	report, err := NewSheetImporter(repo).Import(context.Background(), buf, uuid.New())
	assert.ErrorIs(t, err, errDown)
	assert.Zero(t, report.Imported)
}
