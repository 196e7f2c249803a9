package dto

import "github.com/noah-isme/eduquery-api/internal/models"

// Sentinel values returned by the joined lookups when nothing matched.
const (
	NoMatchSchoolName = "No match"
	NotApplicable     = "N/A"
)

// SubjectLookupRow is one row of the subjects lookup.
type SubjectLookupRow struct {
	SchoolName  string `json:"school_name"`
	SubjectDesc string `json:"subject_desc"`
}

// CCALookupRow is one row of the CCA lookup. The sentinel row omits the optional columns.
type CCALookupRow struct {
	SchoolName        string  `json:"school_name"`
	CCAGenericName    string  `json:"cca_generic_name"`
	CCACustomizedName *string `json:"cca_customized_name,omitempty"`
	SchoolSection     *string `json:"school_section,omitempty"`
}

// ProgrammeLookupRow is one row of the programme lookup.
type ProgrammeLookupRow struct {
	SchoolName       string `json:"school_name"`
	MOEProgrammeDesc string `json:"moe_programme_desc"`
}

// DistinctiveLookupRow is one row of the distinctive programme lookup.
type DistinctiveLookupRow struct {
	SchoolName string  `json:"school_name"`
	ALPDomain  string  `json:"alp_domain"`
	ALPTitle   *string `json:"alp_title,omitempty"`
	LLPDomain1 *string `json:"llp_domain1,omitempty"`
	LLPTitle   *string `json:"llp_title,omitempty"`
}

// NewSubjectLookupRows maps offerings to rows, substituting the sentinel row when empty.
func NewSubjectLookupRows(offerings []models.SubjectOffering) []SubjectLookupRow {
	if len(offerings) == 0 {
		return []SubjectLookupRow{{SchoolName: NoMatchSchoolName, SubjectDesc: NotApplicable}}
	}
	rows := make([]SubjectLookupRow, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, SubjectLookupRow{SchoolName: o.SchoolName, SubjectDesc: o.SubjectDesc})
	}
	return rows
}

// NewCCALookupRows maps offerings to rows, substituting the sentinel row when empty.
func NewCCALookupRows(offerings []models.CCAOffering) []CCALookupRow {
	if len(offerings) == 0 {
		return []CCALookupRow{{SchoolName: NoMatchSchoolName, CCAGenericName: NotApplicable}}
	}
	rows := make([]CCALookupRow, 0, len(offerings))
	for _, o := range offerings {
		customized, section := o.CCACustomizedName, o.SchoolSection
		rows = append(rows, CCALookupRow{
			SchoolName:        o.SchoolName,
			CCAGenericName:    o.CCAGenericName,
			CCACustomizedName: &customized,
			SchoolSection:     &section,
		})
	}
	return rows
}

// NewProgrammeLookupRows maps offerings to rows, substituting the sentinel row when empty.
func NewProgrammeLookupRows(offerings []models.ProgrammeOffering) []ProgrammeLookupRow {
	if len(offerings) == 0 {
		return []ProgrammeLookupRow{{SchoolName: NoMatchSchoolName, MOEProgrammeDesc: NotApplicable}}
	}
	rows := make([]ProgrammeLookupRow, 0, len(offerings))
	for _, o := range offerings {
		rows = append(rows, ProgrammeLookupRow{SchoolName: o.SchoolName, MOEProgrammeDesc: o.MOEProgrammeDesc})
	}
	return rows
}

// NewDistinctiveLookupRows maps offerings to rows, substituting the sentinel row when empty.
func NewDistinctiveLookupRows(offerings []models.DistinctiveOffering) []DistinctiveLookupRow {
	if len(offerings) == 0 {
		return []DistinctiveLookupRow{{SchoolName: NoMatchSchoolName, ALPDomain: NotApplicable}}
	}
	rows := make([]DistinctiveLookupRow, 0, len(offerings))
	for _, o := range offerings {
		title, domain, llpTitle := o.ALPTitle, o.LLPDomain1, o.LLPTitle
		rows = append(rows, DistinctiveLookupRow{
			SchoolName: o.SchoolName,
			ALPDomain:  o.ALPDomain,
			ALPTitle:   &title,
			LLPDomain1: &domain,
			LLPTitle:   &llpTitle,
		})
	}
	return rows
}
