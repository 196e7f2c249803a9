package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/eduquery-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.DirectoryModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedSchool(t *testing.T, db *gorm.DB, name, zone string) models.School {
	t.Helper()
	school := models.School{
		SchoolName:    name,
		Address:       "1 Test Road",
		PostalCode:    "123456",
		ZoneCode:      zone,
		MainlevelCode: "PRIMARY",
		PrincipalName: "Principal " + name,
	}
	require.NoError(t, db.Create(&school).Error)
	return school
}

type recordingActivity struct {
	mu     sync.Mutex
	events []ActivityEvent
	err    error
}

func (r *recordingActivity) Record(ctx context.Context, event ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingActivity) last(t *testing.T) ActivityEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) {
	c.calls++
}

func strPtr(value string) *string {
	return &value
}
