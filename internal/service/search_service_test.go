package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
	"github.com/noah-isme/eduquery-api/internal/search"
)

func TestSearchServiceAdvancedEnvelope(t *testing.T) {
	db := setupServiceDB(t)
	north := seedSchool(t, db, "North Gifted", models.ZoneNorth)
	require.NoError(t, db.Model(&north).Update("gifted_ind", "Yes").Error)
	seedSchool(t, db, "North Plain", models.ZoneNorth)
	south := seedSchool(t, db, "South Gifted", models.ZoneSouth)
	require.NoError(t, db.Model(&south).Update("gifted_ind", "Yes").Error)

	activity := &recordingActivity{}
	svc := NewSearchService(repository.NewSchoolRepository(db), validator.New(), activity, testLogger())

	response, err := svc.Advanced(context.Background(), search.Criteria{ZoneCode: " NORTH ", GiftedInd: "Yes", SchoolName: ""}, ActivityActor{})
	require.NoError(t, err)
	require.True(t, response.Success)
	require.Equal(t, 1, response.Count)
	require.Len(t, response.Results, 1)
	require.Equal(t, "North Gifted", response.Results[0].SchoolName)
	require.Equal(t, map[string]string{"zone_code": "NORTH", "gifted_ind": "Yes"}, response.Criteria)

	event := activity.last(t)
	require.Equal(t, models.ActionAdvancedSearch, event.Action)
	require.Equal(t, 2, event.Data["criteria_count"])
	require.Equal(t, 1, event.Data["results_count"])
}

func TestSearchServiceAdvancedNoMatchesHasNoSentinel(t *testing.T) {
	db := setupServiceDB(t)
	seedSchool(t, db, "Only School", models.ZoneWest)
	svc := NewSearchService(repository.NewSchoolRepository(db), validator.New(), nil, testLogger())

	response, err := svc.Advanced(context.Background(), search.Criteria{SchoolName: "nothing like this"}, ActivityActor{})
	require.NoError(t, err)
	require.Zero(t, response.Count)
	require.NotNil(t, response.Results)
	require.Empty(t, response.Results)
}

func TestSearchServiceAdvancedRejectsEmptyCriteria(t *testing.T) {
	activity := &recordingActivity{}
	svc := NewSearchService(nil, validator.New(), activity, testLogger())

	_, err := svc.Advanced(context.Background(), search.Criteria{SchoolName: "   "}, ActivityActor{})
	require.ErrorIs(t, err, search.ErrEmptyCriteria)
	require.Empty(t, activity.events)
}

func TestSearchServiceAdvancedValidatesZone(t *testing.T) {
	svc := NewSearchService(nil, validator.New(), nil, testLogger())

	_, err := svc.Advanced(context.Background(), search.Criteria{ZoneCode: "ATLANTIS"}, ActivityActor{})
	require.Error(t, err)
	require.IsType(t, validator.ValidationErrors{}, err)
}
