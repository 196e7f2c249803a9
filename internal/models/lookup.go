package models

// SubjectOffering is one school/subject pair returned by the subject lookup.
type SubjectOffering struct {
	SchoolName  string `gorm:"column:school_name"`
	SubjectDesc string `gorm:"column:subject_desc"`
}

// CCAOffering is one school/CCA pair returned by the CCA lookup.
type CCAOffering struct {
	SchoolName        string `gorm:"column:school_name"`
	CCAGenericName    string `gorm:"column:cca_generic_name"`
	CCACustomizedName string `gorm:"column:cca_customized_name"`
	SchoolSection     string `gorm:"column:school_section"`
}

// ProgrammeOffering is one school/programme pair returned by the programme lookup.
type ProgrammeOffering struct {
	SchoolName       string `gorm:"column:school_name"`
	MOEProgrammeDesc string `gorm:"column:moe_programme_desc"`
}

// DistinctiveOffering is one school/distinctive programme pair.
type DistinctiveOffering struct {
	SchoolName string `gorm:"column:school_name"`
	ALPDomain  string `gorm:"column:alp_domain"`
	ALPTitle   string `gorm:"column:alp_title"`
	LLPDomain1 string `gorm:"column:llp_domain1"`
	LLPTitle   string `gorm:"column:llp_title"`
}

// SchoolCoverage counts how many associations of each kind a school has.
type SchoolCoverage struct {
	SchoolID         uint   `gorm:"column:school_id"`
	SchoolName       string `gorm:"column:school_name"`
	ZoneCode         string `gorm:"column:zone_code"`
	SubjectCount     int64  `gorm:"column:subject_count"`
	CCACount         int64  `gorm:"column:cca_count"`
	ProgrammeCount   int64  `gorm:"column:programme_count"`
	DistinctiveCount int64  `gorm:"column:distinctive_count"`
}

// ZoneStat aggregates the schools of one zone.
type ZoneStat struct {
	ZoneCode         string  `gorm:"column:zone_code"`
	TotalSchools     int64   `gorm:"column:total_schools"`
	SchoolTypes      int64   `gorm:"column:school_types"`
	AvgAddressLength float64 `gorm:"column:avg_address_length"`
}

// CCAParticipation counts how widely a CCA is offered.
type CCAParticipation struct {
	CCAGenericName string `gorm:"column:cca_generic_name"`
	SchoolCount    int64  `gorm:"column:school_count"`
	TotalOfferings int64  `gorm:"column:total_offerings"`
}
