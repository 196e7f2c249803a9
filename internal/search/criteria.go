package search

import "strings"

// Criteria is the typed advanced-search request. Empty fields do not constrain the result.
type Criteria struct {
	SchoolName        string `json:"school_name,omitempty" form:"school_name" validate:"max=255"`
	PrincipalName     string `json:"principal_name,omitempty" form:"principal_name" validate:"max=255"`
	VPName            string `json:"vp_name,omitempty" form:"vp_name" validate:"max=255"`
	EmailAddress      string `json:"email_address,omitempty" form:"email_address" validate:"max=255"`
	Address           string `json:"address,omitempty" form:"address" validate:"max=255"`
	PostalCode        string `json:"postal_code,omitempty" form:"postal_code" validate:"max=16"`
	FaxNo             string `json:"fax_no,omitempty" form:"fax_no" validate:"max=32"`
	ZoneCode          string `json:"zone_code,omitempty" form:"zone_code" validate:"omitempty,oneof=NORTH SOUTH EAST WEST CENTRAL"`
	MainlevelCode     string `json:"mainlevel_code,omitempty" form:"mainlevel_code" validate:"max=64"`
	TypeCode          string `json:"type_code,omitempty" form:"type_code" validate:"max=64"`
	NatureCode        string `json:"nature_code,omitempty" form:"nature_code" validate:"max=64"`
	SessionCode       string `json:"session_code,omitempty" form:"session_code" validate:"max=64"`
	DGPCode           string `json:"dgp_code,omitempty" form:"dgp_code" validate:"max=64"`
	MothertongueCode  string `json:"mothertongue_code,omitempty" form:"mothertongue_code" validate:"max=64"`
	AutonomousInd     string `json:"autonomous_ind,omitempty" form:"autonomous_ind" validate:"max=8"`
	GiftedInd         string `json:"gifted_ind,omitempty" form:"gifted_ind" validate:"max=8"`
	IPInd             string `json:"ip_ind,omitempty" form:"ip_ind" validate:"max=8"`
	SAPInd            string `json:"sap_ind,omitempty" form:"sap_ind" validate:"max=8"`
	BusDesc           string `json:"bus_desc,omitempty" form:"bus_desc" validate:"max=255"`
	MRTDesc           string `json:"mrt_desc,omitempty" form:"mrt_desc" validate:"max=255"`
	SubjectDesc       string `json:"subject_desc,omitempty" form:"subject_desc" validate:"max=255"`
	CCAGenericName    string `json:"cca_generic_name,omitempty" form:"cca_generic_name" validate:"max=255"`
	CCACustomizedName string `json:"cca_customized_name,omitempty" form:"cca_customized_name" validate:"max=255"`
	CCAGroupingDesc   string `json:"cca_grouping_desc,omitempty" form:"cca_grouping_desc" validate:"max=255"`
	SchoolSection     string `json:"school_section,omitempty" form:"school_section" validate:"max=64"`
	MOEProgrammeDesc  string `json:"moe_programme_desc,omitempty" form:"moe_programme_desc" validate:"max=255"`
	ALPDomain         string `json:"alp_domain,omitempty" form:"alp_domain" validate:"max=255"`
	ALPTitle          string `json:"alp_title,omitempty" form:"alp_title" validate:"max=255"`
	LLPDomain1        string `json:"llp_domain1,omitempty" form:"llp_domain1" validate:"max=255"`
	LLPTitle          string `json:"llp_title,omitempty" form:"llp_title" validate:"max=255"`
}

// Term is one supplied criteria value bound to its field declaration.
type Term struct {
	Field Field
	Value string
}

type slot struct {
	key   string
	value *string
}

func (c *Criteria) slots() []slot {
	return []slot{
		{"school_name", &c.SchoolName},
		{"principal_name", &c.PrincipalName},
		{"vp_name", &c.VPName},
		{"email_address", &c.EmailAddress},
		{"address", &c.Address},
		{"postal_code", &c.PostalCode},
		{"fax_no", &c.FaxNo},
		{"zone_code", &c.ZoneCode},
		{"mainlevel_code", &c.MainlevelCode},
		{"type_code", &c.TypeCode},
		{"nature_code", &c.NatureCode},
		{"session_code", &c.SessionCode},
		{"dgp_code", &c.DGPCode},
		{"mothertongue_code", &c.MothertongueCode},
		{"autonomous_ind", &c.AutonomousInd},
		{"gifted_ind", &c.GiftedInd},
		{"ip_ind", &c.IPInd},
		{"sap_ind", &c.SAPInd},
		{"bus_desc", &c.BusDesc},
		{"mrt_desc", &c.MRTDesc},
		{"subject_desc", &c.SubjectDesc},
		{"cca_generic_name", &c.CCAGenericName},
		{"cca_customized_name", &c.CCACustomizedName},
		{"cca_grouping_desc", &c.CCAGroupingDesc},
		{"school_section", &c.SchoolSection},
		{"moe_programme_desc", &c.MOEProgrammeDesc},
		{"alp_domain", &c.ALPDomain},
		{"alp_title", &c.ALPTitle},
		{"llp_domain1", &c.LLPDomain1},
		{"llp_title", &c.LLPTitle},
	}
}

// Normalize trims every field in place.
func (c *Criteria) Normalize() {
	for _, s := range c.slots() {
		*s.value = strings.TrimSpace(*s.value)
	}
}

// Terms lists the supplied fields in declaration order.
func (c Criteria) Terms() []Term {
	slots := c.slots()
	terms := make([]Term, 0, len(slots))
	for _, s := range slots {
		value := strings.TrimSpace(*s.value)
		if value == "" {
			continue
		}
		terms = append(terms, Term{Field: schemaByKey[s.key], Value: value})
	}
	return terms
}

// IsEmpty reports whether no field was supplied.
func (c Criteria) IsEmpty() bool {
	return len(c.Terms()) == 0
}

// Map echoes the supplied fields keyed by their wire name.
func (c Criteria) Map() map[string]string {
	terms := c.Terms()
	out := make(map[string]string, len(terms))
	for _, term := range terms {
		out[term.Field.Key] = term.Value
	}
	return out
}

// Set assigns value to the field named key. Unknown keys report false.
func (c *Criteria) Set(key, value string) bool {
	for _, s := range c.slots() {
		if s.key == key {
			*s.value = value
			return true
		}
	}
	return false
}
