package dto

import "time"

// Subject diversity levels.
const (
	DiversityHigh   = "High"
	DiversityMedium = "Medium"
	DiversityLow    = "Low"
)

// Completeness statuses.
const (
	CompletenessComplete   = "Complete"
	CompletenessGood       = "Good"
	CompletenessFair       = "Fair"
	CompletenessIncomplete = "Incomplete"
)

// ZoneDistributionItem is one row of the schools-by-zone panel.
type ZoneDistributionItem struct {
	ZoneCode         string  `json:"zone_code"`
	TotalSchools     int64   `json:"total_schools"`
	SchoolTypes      int64   `json:"school_types"`
	AvgAddressLength float64 `json:"avg_address_length"`
}

// SubjectCountItem is one school of the subject count ranking.
type SubjectCountItem struct {
	SchoolID         uint   `json:"school_id"`
	SchoolName       string `json:"school_name"`
	ZoneCode         string `json:"zone_code"`
	SubjectCount     int64  `json:"subject_count"`
	SubjectDiversity string `json:"subject_diversity"`
}

// SubjectCountSummary aggregates the subject count ranking.
type SubjectCountSummary struct {
	TotalSchools int     `json:"total_schools"`
	AvgSubjects  float64 `json:"avg_subjects"`
}

// AboveAverageItem is a school offering more subjects than the system mean.
type AboveAverageItem struct {
	SchoolID      uint    `json:"school_id"`
	SchoolName    string  `json:"school_name"`
	ZoneCode      string  `json:"zone_code"`
	SubjectCount  int64   `json:"subject_count"`
	SystemAverage float64 `json:"system_average"`
	Difference    float64 `json:"difference"`
}

// CCAParticipationItem reports how widely a CCA is offered.
type CCAParticipationItem struct {
	CCAGenericName      string  `json:"cca_generic_name"`
	SchoolCount         int64   `json:"school_count"`
	TotalOfferings      int64   `json:"total_offerings"`
	PercentageOfSchools float64 `json:"percentage_of_schools"`
}

// CompletenessItem scores how many offering categories a school has data for.
type CompletenessItem struct {
	SchoolID           uint   `json:"school_id"`
	SchoolName         string `json:"school_name"`
	SubjectCount       int64  `json:"subject_count"`
	CCACount           int64  `json:"cca_count"`
	ProgrammeCount     int64  `json:"programme_count"`
	DistinctiveCount   int64  `json:"distinctive_count"`
	CompletenessScore  int    `json:"completeness_score"`
	CompletenessStatus string `json:"completeness_status"`
}

// CompletenessSummary counts schools per completeness status.
type CompletenessSummary struct {
	CompleteSchools   int `json:"complete_schools"`
	GoodSchools       int `json:"good_schools"`
	FairSchools       int `json:"fair_schools"`
	IncompleteSchools int `json:"incomplete_schools"`
}

// ZoneComparisonItem compares offerings across zones.
type ZoneComparisonItem struct {
	ZoneCode             string  `json:"zone_code"`
	TotalSchools         int64   `json:"total_schools"`
	SchoolTypes          int64   `json:"school_types"`
	UniqueSubjects       int64   `json:"unique_subjects"`
	UniqueCCAs           int64   `json:"unique_ccas"`
	AvgSubjectsPerSchool float64 `json:"avg_subjects_per_school"`
	AvgCCAsPerSchool     float64 `json:"avg_ccas_per_school"`
}

// AnalyticsResponse is the envelope shared by the analytics panels.
type AnalyticsResponse[T any] struct {
	Success     bool        `json:"success"`
	Data        []T         `json:"data"`
	Summary     interface{} `json:"summary,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
	CacheHit    bool        `json:"cache_hit"`
}
