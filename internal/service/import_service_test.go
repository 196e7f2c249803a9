package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

func newTestImportService(t *testing.T) (ImportService, *recordingActivity, *countingInvalidator, func() int64) {
	t.Helper()
	db := setupServiceDB(t)
	activity := &recordingActivity{}
	cache := &countingInvalidator{}
	repo := repository.NewSchoolRepository(db)
	svc := NewImportService(repo, validator.New(), activity, cache, testLogger())
	count := func() int64 {
		total, err := repo.Count(context.Background())
		require.NoError(t, err)
		return total
	}
	return svc, activity, cache, count
}

func TestImportServiceLoadsCSV(t *testing.T) {
	svc, activity, cache, count := newTestImportService(t)
	csv := strings.Join([]string{
		"school_name,address,postal_code,zone_code,mainlevel_code,principal_name,gifted_ind",
		"Alpha School,1 Alpha Road,100001,north,PRIMARY,Mr A,Yes",
		`"Bravo School, Annex",2 Bravo Road,100002,SOUTH,SECONDARY,Ms B,No`,
	}, "\n")

	response, err := svc.Import(context.Background(), strings.NewReader(csv), ActivityActor{Username: "admin"})
	require.NoError(t, err)
	require.Equal(t, 2, response.Imported)
	require.Equal(t, int64(2), count())
	require.Equal(t, 1, cache.calls)

	event := activity.last(t)
	require.Equal(t, models.ActionSchoolImport, event.Action)
	require.Equal(t, 2, event.Data["results_count"])
}

func TestImportServiceRejectsMissingColumns(t *testing.T) {
	svc, _, _, count := newTestImportService(t)

	_, err := svc.Import(context.Background(), strings.NewReader("school_name,address\nAlpha,Road\n"), ActivityActor{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "principal_name")
	require.Zero(t, count())
}

func TestImportServiceReportsInvalidRow(t *testing.T) {
	svc, _, _, count := newTestImportService(t)
	csv := "school_name,address,postal_code,zone_code,mainlevel_code,principal_name\n" +
		"Alpha,1 Road,1,NORTH,PRIMARY,Mr A\n" +
		"Bravo,2 Road,2,MOON,PRIMARY,Ms B\n"

	_, err := svc.Import(context.Background(), strings.NewReader(csv), ActivityActor{})
	var rowErr *ImportRowError
	require.True(t, errors.As(err, &rowErr))
	require.Equal(t, 3, rowErr.Row)
	require.Zero(t, count(), "nothing is stored when a row is invalid")
}

func TestImportServiceRejectsBinaryAndOversizedUploads(t *testing.T) {
	svc, _, _, _ := newTestImportService(t)

	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	_, err := svc.Import(context.Background(), bytes.NewReader(png), ActivityActor{})
	require.ErrorIs(t, err, ErrImportType)

	large := bytes.Repeat([]byte("a"), MaxImportSize+10)
	_, err = svc.Import(context.Background(), bytes.NewReader(large), ActivityActor{})
	require.ErrorIs(t, err, ErrImportTooLarge)
}

func TestImportServiceRejectsHeaderOnlyFile(t *testing.T) {
	svc, _, _, _ := newTestImportService(t)

	_, err := svc.Import(context.Background(), strings.NewReader("school_name,address,postal_code,zone_code,mainlevel_code,principal_name\n"), ActivityActor{})
	require.ErrorIs(t, err, ErrImportEmpty)
}
