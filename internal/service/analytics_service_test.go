package service

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/eduquery-api/internal/dto"
	"github.com/noah-isme/eduquery-api/internal/models"
	"github.com/noah-isme/eduquery-api/internal/repository"
)

type fakeAnalyticsRepo struct {
	zones         []models.ZoneStat
	coverage      []models.SchoolCoverage
	ccas          []models.CCAParticipation
	uniques       map[repository.OfferingKind]map[string]int64
	total         int64
	coverageCalls int
	err           error
}

func (f *fakeAnalyticsRepo) ZoneStats(ctx context.Context) ([]models.ZoneStat, error) {
	return append([]models.ZoneStat(nil), f.zones...), f.err
}

func (f *fakeAnalyticsRepo) SchoolCoverage(ctx context.Context) ([]models.SchoolCoverage, error) {
	f.coverageCalls++
	return append([]models.SchoolCoverage(nil), f.coverage...), f.err
}

func (f *fakeAnalyticsRepo) CCAParticipation(ctx context.Context) ([]models.CCAParticipation, error) {
	return append([]models.CCAParticipation(nil), f.ccas...), f.err
}

func (f *fakeAnalyticsRepo) UniqueOfferingsByZone(ctx context.Context, kind repository.OfferingKind) (map[string]int64, error) {
	return f.uniques[kind], f.err
}

func (f *fakeAnalyticsRepo) CountSchools(ctx context.Context) (int64, error) {
	return f.total, f.err
}

func sampleAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{
		zones: []models.ZoneStat{
			{ZoneCode: "EAST", TotalSchools: 1, SchoolTypes: 1, AvgAddressLength: 12.3456},
			{ZoneCode: "NORTH", TotalSchools: 2, SchoolTypes: 2, AvgAddressLength: 20},
		},
		coverage: []models.SchoolCoverage{
			{SchoolID: 1, SchoolName: "Alpha", ZoneCode: "NORTH", SubjectCount: 25, CCACount: 4, ProgrammeCount: 1, DistinctiveCount: 1},
			{SchoolID: 2, SchoolName: "Bravo", ZoneCode: "NORTH", SubjectCount: 10, CCACount: 2, ProgrammeCount: 1},
			{SchoolID: 3, SchoolName: "Charlie", ZoneCode: "EAST", SubjectCount: 4},
		},
		ccas: []models.CCAParticipation{
			{CCAGenericName: "FOOTBALL", SchoolCount: 2, TotalOfferings: 3},
			{CCAGenericName: "CHESS", SchoolCount: 1, TotalOfferings: 1},
		},
		uniques: map[repository.OfferingKind]map[string]int64{
			repository.OfferingSubjects: {"NORTH": 27, "EAST": 4},
			repository.OfferingCCAs:     {"NORTH": 5},
		},
		total: 3,
	}
}

func TestSubjectDiversityThresholds(t *testing.T) {
	require.Equal(t, dto.DiversityHigh, SubjectDiversity(20))
	require.Equal(t, dto.DiversityMedium, SubjectDiversity(19))
	require.Equal(t, dto.DiversityMedium, SubjectDiversity(10))
	require.Equal(t, dto.DiversityLow, SubjectDiversity(9))
	require.Equal(t, dto.DiversityLow, SubjectDiversity(0))
}

func TestCompletenessScoring(t *testing.T) {
	require.Equal(t, 100, CompletenessScore(models.SchoolCoverage{SubjectCount: 1, CCACount: 1, ProgrammeCount: 1, DistinctiveCount: 1}))
	require.Equal(t, 50, CompletenessScore(models.SchoolCoverage{SubjectCount: 9, CCACount: 3}))
	require.Equal(t, 0, CompletenessScore(models.SchoolCoverage{}))

	require.Equal(t, dto.CompletenessComplete, CompletenessStatus(100))
	require.Equal(t, dto.CompletenessGood, CompletenessStatus(75))
	require.Equal(t, dto.CompletenessFair, CompletenessStatus(50))
	require.Equal(t, dto.CompletenessIncomplete, CompletenessStatus(25))
}

func TestAnalyticsServicePanels(t *testing.T) {
	svc := NewAnalyticsService(sampleAnalyticsRepo(), nil, time.Minute, testLogger())
	ctx := context.Background()

	zones, err := svc.SchoolsByZone(ctx)
	require.NoError(t, err)
	require.Equal(t, 12.35, zones.Data[0].AvgAddressLength)

	counts, err := svc.SubjectCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alpha", counts.Data[0].SchoolName)
	require.Equal(t, dto.DiversityHigh, counts.Data[0].SubjectDiversity)
	require.Equal(t, dto.DiversityMedium, counts.Data[1].SubjectDiversity)
	require.Equal(t, dto.DiversityLow, counts.Data[2].SubjectDiversity)
	require.Equal(t, dto.SubjectCountSummary{TotalSchools: 3, AvgSubjects: 13}, counts.Summary)

	above, err := svc.AboveAverageSubjects(ctx)
	require.NoError(t, err)
	require.Len(t, above.Data, 1)
	require.Equal(t, "Alpha", above.Data[0].SchoolName)
	require.Equal(t, 13.0, above.Data[0].SystemAverage)
	require.Equal(t, 12.0, above.Data[0].Difference)

	ccas, err := svc.CCAParticipation(ctx)
	require.NoError(t, err)
	require.Equal(t, 66.67, ccas.Data[0].PercentageOfSchools)
	require.Equal(t, 33.33, ccas.Data[1].PercentageOfSchools)

	completeness, err := svc.DataCompleteness(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alpha", completeness.Data[0].SchoolName)
	require.Equal(t, dto.CompletenessComplete, completeness.Data[0].CompletenessStatus)
	require.Equal(t, 75, completeness.Data[1].CompletenessScore)
	require.Equal(t, dto.CompletenessSummary{CompleteSchools: 1, GoodSchools: 1, IncompleteSchools: 1}, completeness.Summary)

	comparison, err := svc.ZoneComparison(ctx)
	require.NoError(t, err)
	require.Len(t, comparison.Data, 2)
	north := comparison.Data[1]
	require.Equal(t, "NORTH", north.ZoneCode)
	require.Equal(t, int64(27), north.UniqueSubjects)
	require.Equal(t, int64(5), north.UniqueCCAs)
	require.Equal(t, 17.5, north.AvgSubjectsPerSchool)
	require.Equal(t, 3.0, north.AvgCCAsPerSchool)
	require.Zero(t, comparison.Data[0].UniqueCCAs)
}

func TestAnalyticsServiceEmptyDirectory(t *testing.T) {
	svc := NewAnalyticsService(&fakeAnalyticsRepo{}, nil, time.Minute, testLogger())

	counts, err := svc.SubjectCounts(context.Background())
	require.NoError(t, err)
	require.NotNil(t, counts.Data)
	require.Empty(t, counts.Data)

	ccas, err := svc.CCAParticipation(context.Background())
	require.NoError(t, err)
	require.Empty(t, ccas.Data)
}

func TestAnalyticsServicePropagatesStoreErrors(t *testing.T) {
	repo := sampleAnalyticsRepo()
	repo.err = errors.New("db down")
	svc := NewAnalyticsService(repo, nil, time.Minute, testLogger())

	_, err := svc.DataCompleteness(context.Background())
	require.Error(t, err)
}

func TestAnalyticsServiceCachingAndInvalidation(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	repo := sampleAnalyticsRepo()
	svc := NewAnalyticsService(repo, client, time.Minute, testLogger())
	ctx := context.Background()

	first, err := svc.SubjectCounts(ctx)
	require.NoError(t, err)
	require.False(t, first.CacheHit)
	require.Equal(t, 1, repo.coverageCalls)

	second, err := svc.SubjectCounts(ctx)
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, 1, repo.coverageCalls)
	require.Equal(t, first.Data, second.Data)

	svc.Invalidate(ctx)
	require.False(t, server.Exists(cacheKeySubjectCount))

	third, err := svc.SubjectCounts(ctx)
	require.NoError(t, err)
	require.False(t, third.CacheHit)
	require.Equal(t, 2, repo.coverageCalls)
}
