package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.DirectoryModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type directoryFixture struct {
	northGifted models.School
	northPlain  models.School
	southGifted models.School
}

func seedDirectory(t *testing.T, db *gorm.DB) directoryFixture {
	t.Helper()

	f := directoryFixture{
		northGifted: models.School{SchoolName: "Admiralty Secondary School", Address: "11 Woodlands Cir", PostalCode: "738907", ZoneCode: models.ZoneNorth, MainlevelCode: "SECONDARY", PrincipalName: "Tan Ah Kow", TypeCode: "GOVERNMENT SCHOOL", GiftedInd: "Yes", SAPInd: "No"},
		northPlain:  models.School{SchoolName: "Admiralty Primary School", Address: "11 Woodlands Ring", PostalCode: "738240", ZoneCode: models.ZoneNorth, MainlevelCode: "PRIMARY", PrincipalName: "Lim Mei", TypeCode: "GOVERNMENT SCHOOL", GiftedInd: "No"},
		southGifted: models.School{SchoolName: "Raffles Institution", Address: "1 Raffles Institution Lane", PostalCode: "575954", ZoneCode: models.ZoneSouth, MainlevelCode: "MIXED LEVELS", PrincipalName: "Wong Kee", TypeCode: "INDEPENDENT SCHOOL", GiftedInd: "Yes", IPInd: "Yes"},
	}
	require.NoError(t, db.Create(&f.northGifted).Error)
	require.NoError(t, db.Create(&f.northPlain).Error)
	require.NoError(t, db.Create(&f.southGifted).Error)

	maths := models.Subject{SubjectDesc: "MATHEMATICS"}
	physics := models.Subject{SubjectDesc: "PHYSICS"}
	require.NoError(t, db.Create(&maths).Error)
	require.NoError(t, db.Create(&physics).Error)
	require.NoError(t, db.Create(&[]models.SchoolSubject{
		{SchoolID: f.northGifted.SchoolID, SubjectID: maths.SubjectID},
		{SchoolID: f.northGifted.SchoolID, SubjectID: physics.SubjectID},
		{SchoolID: f.southGifted.SchoolID, SubjectID: physics.SubjectID},
	}).Error)

	football := models.CCA{CCAGenericName: "FOOTBALL", CCAGroupingDesc: "PHYSICAL SPORTS"}
	choir := models.CCA{CCAGenericName: "CHOIR", CCAGroupingDesc: "VISUAL AND PERFORMING ARTS"}
	require.NoError(t, db.Create(&football).Error)
	require.NoError(t, db.Create(&choir).Error)
	require.NoError(t, db.Create(&[]models.SchoolCCA{
		{SchoolID: f.northGifted.SchoolID, CCAID: football.CCAID, CCACustomizedName: "Admiralty Football", SchoolSection: "SECONDARY"},
		{SchoolID: f.southGifted.SchoolID, CCAID: choir.CCAID, CCACustomizedName: "RI Choir", SchoolSection: "SECONDARY"},
	}).Error)

	programme := models.Programme{MOEProgrammeDesc: "Art Elective Programme"}
	require.NoError(t, db.Create(&programme).Error)
	require.NoError(t, db.Create(&models.SchoolProgramme{SchoolID: f.northGifted.SchoolID, ProgrammeID: programme.ProgrammeID}).Error)

	distinctive := models.DistinctiveProgramme{ALPDomain: "Science and Technology", ALPTitle: "Robotics", LLPDomain1: "Community and Youth Leadership", LLPTitle: "Leaders for Life"}
	require.NoError(t, db.Create(&distinctive).Error)
	require.NoError(t, db.Create(&models.SchoolDistinctive{SchoolID: f.northGifted.SchoolID, DistinctiveID: distinctive.DistinctiveID}).Error)

	return f
}

func countAssociations(t *testing.T, db *gorm.DB, schoolID uint) int64 {
	t.Helper()
	var total int64
	for _, model := range []interface{}{&models.SchoolSubject{}, &models.SchoolCCA{}, &models.SchoolProgramme{}, &models.SchoolDistinctive{}} {
		var count int64
		require.NoError(t, db.Model(model).Where("school_id = ?", schoolID).Count(&count).Error)
		total += count
	}
	return total
}
