package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

type schoolServiceFixture struct {
	svc      SchoolService
	db       *gorm.DB
	activity *recordingActivity
	cache    *countingInvalidator
}

func newSchoolServiceFixture(t *testing.T) schoolServiceFixture {
	t.Helper()
	db := setupServiceDB(t)
	activity := &recordingActivity{}
	cache := &countingInvalidator{}
	svc := NewSchoolService(repository.NewSchoolRepository(db), validator.New(), activity, cache, 20, testLogger())
	return schoolServiceFixture{svc: svc, db: db, activity: activity, cache: cache}
}

func validSchoolRequest() dto.SchoolRequest {
	return dto.SchoolRequest{
		SchoolName:    "Northlight School",
		Address:       "151 Towner Road",
		PostalCode:    "210151",
		ZoneCode:      "central",
		MainlevelCode: "secondary",
		PrincipalName: "Ms Lee",
		GiftedInd:     strPtr("No"),
	}
}

func TestSchoolServiceSearchByNameCapsAndRecords(t *testing.T) {
	f := newSchoolServiceFixture(t)
	for i := 0; i < 25; i++ {
		seedSchool(t, f.db, fmt.Sprintf("Greenwood School %02d", i), models.ZoneNorth)
	}

	results, err := f.svc.SearchByName(context.Background(), "  GREENWOOD ", ActivityActor{Username: "alice"})
	require.NoError(t, err)
	require.Len(t, results, 20)

	event := f.activity.last(t)
	require.Equal(t, models.ActionSearch, event.Action)
	require.Equal(t, "greenwood", event.Term)
	require.Equal(t, "GREENWOOD", event.Data["query"])
	require.Equal(t, 20, event.Data["results_count"])
	require.Equal(t, "alice", event.Data["username"])
}

func TestSchoolServiceSearchSurvivesActivityFailure(t *testing.T) {
	f := newSchoolServiceFixture(t)
	f.activity.err = fmt.Errorf("log store down")
	seedSchool(t, f.db, "Bedok View", models.ZoneEast)

	results, err := f.svc.SearchByName(context.Background(), "bedok", ActivityActor{})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSchoolServiceLookupsReturnSentinelWhenEmpty(t *testing.T) {
	f := newSchoolServiceFixture(t)
	ctx := context.Background()

	subjects, err := f.svc.Subjects(ctx, "nowhere")
	require.NoError(t, err)
	require.Equal(t, []dto.SubjectLookupRow{{SchoolName: "No match", SubjectDesc: "N/A"}}, subjects)

	ccas, err := f.svc.CCAs(ctx, "nowhere")
	require.NoError(t, err)
	require.Len(t, ccas, 1)
	require.Equal(t, "No match", ccas[0].SchoolName)
	require.Equal(t, "N/A", ccas[0].CCAGenericName)
	require.Nil(t, ccas[0].CCACustomizedName)

	programmes, err := f.svc.Programmes(ctx, "nowhere")
	require.NoError(t, err)
	require.Equal(t, "N/A", programmes[0].MOEProgrammeDesc)

	distinctives, err := f.svc.Distinctives(ctx, "nowhere")
	require.NoError(t, err)
	require.Equal(t, "N/A", distinctives[0].ALPDomain)
}

func TestSchoolServiceSubjectsReturnsRows(t *testing.T) {
	f := newSchoolServiceFixture(t)
	school := seedSchool(t, f.db, "Pasir Ris Crest", models.ZoneEast)
	subject := models.Subject{SubjectDesc: "GEOGRAPHY"}
	require.NoError(t, f.db.Create(&subject).Error)
	require.NoError(t, f.db.Create(&models.SchoolSubject{SchoolID: school.SchoolID, SubjectID: subject.SubjectID}).Error)

	rows, err := f.svc.Subjects(context.Background(), "crest")
	require.NoError(t, err)
	require.Equal(t, []dto.SubjectLookupRow{{SchoolName: "Pasir Ris Crest", SubjectDesc: "GEOGRAPHY"}}, rows)
}

func TestSchoolServiceCreateNormalizesAndSanitizes(t *testing.T) {
	f := newSchoolServiceFixture(t)
	req := validSchoolRequest()
	req.SchoolName = "  <b>Northlight</b> School & Co "

	created, err := f.svc.Create(context.Background(), req, ActivityActor{Username: "admin"})
	require.NoError(t, err)
	require.NotZero(t, created.SchoolID)
	require.Equal(t, "Northlight School & Co", created.SchoolName)
	require.Equal(t, "CENTRAL", created.ZoneCode)
	require.Equal(t, "SECONDARY", created.MainlevelCode)
	require.Equal(t, "No", created.GiftedInd)
	require.Equal(t, "", created.VPName)

	require.Equal(t, 1, f.cache.calls)
	event := f.activity.last(t)
	require.Equal(t, models.ActionSchoolCreated, event.Action)
	require.Equal(t, "admin", event.Data["admin_username"])
}

func TestSchoolServiceCreateRejectsInvalidPayload(t *testing.T) {
	f := newSchoolServiceFixture(t)

	req := validSchoolRequest()
	req.ZoneCode = "MIDDLE"
	_, err := f.svc.Create(context.Background(), req, ActivityActor{})
	require.Error(t, err)
	require.IsType(t, validator.ValidationErrors{}, err)

	req = validSchoolRequest()
	req.PrincipalName = "   "
	_, err = f.svc.Create(context.Background(), req, ActivityActor{})
	require.Error(t, err)

	require.Zero(t, f.cache.calls)
}

func TestSchoolServiceUpdateReplacesCoreAndSuppliedOptionalFields(t *testing.T) {
	f := newSchoolServiceFixture(t)
	created, err := f.svc.Create(context.Background(), dto.SchoolRequest{
		SchoolName: "Old Name", Address: "Old Address", PostalCode: "1", ZoneCode: "WEST",
		MainlevelCode: "PRIMARY", PrincipalName: "Old Principal", VPName: strPtr("Keep Me"),
	}, ActivityActor{})
	require.NoError(t, err)

	req := validSchoolRequest()
	req.GiftedInd = nil
	req.IPInd = strPtr("Yes")
	updated, err := f.svc.Update(context.Background(), created.SchoolID, req, ActivityActor{Username: "admin"})
	require.NoError(t, err)
	require.Equal(t, "Northlight School", updated.SchoolName)
	require.Equal(t, "CENTRAL", updated.ZoneCode)
	require.Equal(t, "Keep Me", updated.VPName)
	require.Equal(t, "Yes", updated.IPInd)
	require.Equal(t, models.ActionSchoolUpdated, f.activity.last(t).Action)
}

func TestSchoolServiceUpdateClearsOptionalFieldSetToBlank(t *testing.T) {
	f := newSchoolServiceFixture(t)
	req := validSchoolRequest()
	req.VPName = strPtr("Mr Tan")
	req.MRTDesc = strPtr("Yishun")
	created, err := f.svc.Create(context.Background(), req, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, "Mr Tan", created.VPName)

	req.VPName = strPtr("")
	req.MRTDesc = nil
	updated, err := f.svc.Update(context.Background(), created.SchoolID, req, ActivityActor{Username: "admin"})
	require.NoError(t, err)
	require.Equal(t, "", updated.VPName)
	require.Equal(t, "Yishun", updated.MRTDesc)
}

func TestSchoolServiceUpdateUnknownSchool(t *testing.T) {
	f := newSchoolServiceFixture(t)

	_, err := f.svc.Update(context.Background(), 404, validSchoolRequest(), ActivityActor{})
	require.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestSchoolServiceDelete(t *testing.T) {
	f := newSchoolServiceFixture(t)
	school := seedSchool(t, f.db, "Closing School", models.ZoneSouth)

	removed, err := f.svc.Delete(context.Background(), school.SchoolID, ActivityActor{Username: "admin"})
	require.NoError(t, err)
	require.Equal(t, school.SchoolID, removed.SchoolID)
	require.Equal(t, 1, f.cache.calls)

	event := f.activity.last(t)
	require.Equal(t, models.ActionSchoolDeleted, event.Action)
	require.Equal(t, "Closing School", event.Data["school_name"])

	_, err = f.svc.Delete(context.Background(), school.SchoolID, ActivityActor{})
	require.ErrorIs(t, err, ErrSchoolNotFound)
}

func TestSchoolServiceStats(t *testing.T) {
	f := newSchoolServiceFixture(t)
	seedSchool(t, f.db, "A", models.ZoneNorth)
	seedSchool(t, f.db, "B", models.ZoneSouth)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalSchools)
}
