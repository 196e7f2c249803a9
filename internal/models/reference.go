package models

// Subject is a reference entity offered by many schools.
type Subject struct {
	SubjectID   uint   `gorm:"column:subject_id;primaryKey" json:"subject_id"`
	SubjectDesc string `gorm:"column:subject_desc;size:255;not null" json:"subject_desc"`
}

func (Subject) TableName() string { return "subjects" }

// SchoolSubject links a school to a subject.
type SchoolSubject struct {
	SchoolID  uint    `gorm:"column:school_id;primaryKey" json:"school_id"`
	SubjectID uint    `gorm:"column:subject_id;primaryKey" json:"subject_id"`
	School    School  `gorm:"foreignKey:SchoolID;references:SchoolID;constraint:OnDelete:CASCADE" json:"-"`
	Subject   Subject `gorm:"foreignKey:SubjectID;references:SubjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SchoolSubject) TableName() string { return "school_subjects" }

// CCA is a co-curricular activity.
type CCA struct {
	CCAID           uint   `gorm:"column:cca_id;primaryKey" json:"cca_id"`
	CCAGenericName  string `gorm:"column:cca_generic_name;size:255;not null" json:"cca_generic_name"`
	CCAGroupingDesc string `gorm:"column:cca_grouping_desc;size:255" json:"cca_grouping_desc"`
}

func (CCA) TableName() string { return "ccas" }

// SchoolCCA links a school to a CCA with the school's own name for it.
type SchoolCCA struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	SchoolID          uint   `gorm:"column:school_id;not null;index" json:"school_id"`
	CCAID             uint   `gorm:"column:cca_id;not null;index" json:"cca_id"`
	CCACustomizedName string `gorm:"column:cca_customized_name;size:255" json:"cca_customized_name"`
	SchoolSection     string `gorm:"column:school_section;size:64" json:"school_section"`
	School            School `gorm:"foreignKey:SchoolID;references:SchoolID;constraint:OnDelete:CASCADE" json:"-"`
	CCA               CCA    `gorm:"foreignKey:CCAID;references:CCAID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SchoolCCA) TableName() string { return "school_ccas" }

// Programme is a MOE programme description.
type Programme struct {
	ProgrammeID      uint   `gorm:"column:programme_id;primaryKey" json:"programme_id"`
	MOEProgrammeDesc string `gorm:"column:moe_programme_desc;size:255;not null" json:"moe_programme_desc"`
}

func (Programme) TableName() string { return "programmes" }

// SchoolProgramme links a school to a programme.
type SchoolProgramme struct {
	SchoolID    uint      `gorm:"column:school_id;primaryKey" json:"school_id"`
	ProgrammeID uint      `gorm:"column:programme_id;primaryKey" json:"programme_id"`
	School      School    `gorm:"foreignKey:SchoolID;references:SchoolID;constraint:OnDelete:CASCADE" json:"-"`
	Programme   Programme `gorm:"foreignKey:ProgrammeID;references:ProgrammeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SchoolProgramme) TableName() string { return "school_programmes" }

// DistinctiveProgramme pairs an applied learning (ALP) and a learning for life (LLP) programme.
type DistinctiveProgramme struct {
	DistinctiveID uint   `gorm:"column:distinctive_id;primaryKey" json:"distinctive_id"`
	ALPDomain     string `gorm:"column:alp_domain;size:255" json:"alp_domain"`
	ALPTitle      string `gorm:"column:alp_title;size:255" json:"alp_title"`
	LLPDomain1    string `gorm:"column:llp_domain1;size:255" json:"llp_domain1"`
	LLPTitle      string `gorm:"column:llp_title;size:255" json:"llp_title"`
}

func (DistinctiveProgramme) TableName() string { return "distinctive_programmes" }

// SchoolDistinctive links a school to a distinctive programme.
type SchoolDistinctive struct {
	SchoolID      uint                 `gorm:"column:school_id;primaryKey" json:"school_id"`
	DistinctiveID uint                 `gorm:"column:distinctive_id;primaryKey" json:"distinctive_id"`
	School        School               `gorm:"foreignKey:SchoolID;references:SchoolID;constraint:OnDelete:CASCADE" json:"-"`
	Distinctive   DistinctiveProgramme `gorm:"foreignKey:DistinctiveID;references:DistinctiveID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SchoolDistinctive) TableName() string { return "school_distinctives" }

// DirectoryModels lists every table of the school directory in migration order.
func DirectoryModels() []interface{} {
	return []interface{}{
		&School{},
		&Subject{}, &SchoolSubject{},
		&CCA{}, &SchoolCCA{},
		&Programme{}, &SchoolProgramme{},
		&DistinctiveProgramme{}, &SchoolDistinctive{},
		&User{},
		&ActivityLog{},
	}
}
