// Package search turns name terms and advanced criteria into gorm scopes over the schools table.
package search

// MatchMode declares how a criteria value is compared against its column.
type MatchMode int

const (
	// Substring is a case-insensitive, unanchored LIKE match.
	Substring MatchMode = iota
	// Exact is an equality match, used for enumerated values.
	Exact
)

func (m MatchMode) String() string {
	if m == Exact {
		return "exact"
	}
	return "substring"
}

// Join names the association a field lives behind.
type Join string

const (
	JoinNone         Join = ""
	JoinSubjects     Join = "subjects"
	JoinCCAs         Join = "ccas"
	JoinProgrammes   Join = "programmes"
	JoinDistinctives Join = "distinctives"
)

// Field describes one searchable attribute.
type Field struct {
	Key    string
	Column string
	Mode   MatchMode
	Join   Join
}

var schema = []Field{
	{Key: "school_name", Column: "schools.school_name", Mode: Substring},
	{Key: "principal_name", Column: "schools.principal_name", Mode: Substring},
	{Key: "vp_name", Column: "schools.vp_name", Mode: Substring},
	{Key: "email_address", Column: "schools.email_address", Mode: Substring},
	{Key: "address", Column: "schools.address", Mode: Substring},
	{Key: "postal_code", Column: "schools.postal_code", Mode: Substring},
	{Key: "fax_no", Column: "schools.fax_no", Mode: Substring},
	{Key: "zone_code", Column: "schools.zone_code", Mode: Exact},
	{Key: "mainlevel_code", Column: "schools.mainlevel_code", Mode: Exact},
	{Key: "type_code", Column: "schools.type_code", Mode: Substring},
	{Key: "nature_code", Column: "schools.nature_code", Mode: Substring},
	{Key: "session_code", Column: "schools.session_code", Mode: Substring},
	{Key: "dgp_code", Column: "schools.dgp_code", Mode: Substring},
	{Key: "mothertongue_code", Column: "schools.mothertongue_code", Mode: Substring},
	{Key: "autonomous_ind", Column: "schools.autonomous_ind", Mode: Exact},
	{Key: "gifted_ind", Column: "schools.gifted_ind", Mode: Exact},
	{Key: "ip_ind", Column: "schools.ip_ind", Mode: Exact},
	{Key: "sap_ind", Column: "schools.sap_ind", Mode: Exact},
	{Key: "bus_desc", Column: "schools.bus_desc", Mode: Substring},
	{Key: "mrt_desc", Column: "schools.mrt_desc", Mode: Substring},
	{Key: "subject_desc", Column: "subj.subject_desc", Mode: Substring, Join: JoinSubjects},
	{Key: "cca_generic_name", Column: "c.cca_generic_name", Mode: Substring, Join: JoinCCAs},
	{Key: "cca_customized_name", Column: "sca.cca_customized_name", Mode: Substring, Join: JoinCCAs},
	{Key: "cca_grouping_desc", Column: "c.cca_grouping_desc", Mode: Substring, Join: JoinCCAs},
	{Key: "school_section", Column: "sca.school_section", Mode: Substring, Join: JoinCCAs},
	{Key: "moe_programme_desc", Column: "p.moe_programme_desc", Mode: Substring, Join: JoinProgrammes},
	{Key: "alp_domain", Column: "d.alp_domain", Mode: Substring, Join: JoinDistinctives},
	{Key: "alp_title", Column: "d.alp_title", Mode: Substring, Join: JoinDistinctives},
	{Key: "llp_domain1", Column: "d.llp_domain1", Mode: Substring, Join: JoinDistinctives},
	{Key: "llp_title", Column: "d.llp_title", Mode: Substring, Join: JoinDistinctives},
}

var schemaByKey = func() map[string]Field {
	index := make(map[string]Field, len(schema))
	for _, field := range schema {
		index[field.Key] = field
	}
	return index
}()

// joinSources holds the association tables an EXISTS clause walks, keyed by join.
var joinSources = map[Join]string{
	JoinSubjects:     "school_subjects ss JOIN subjects subj ON subj.subject_id = ss.subject_id WHERE ss.school_id = schools.school_id",
	JoinCCAs:         "school_ccas sca JOIN ccas c ON c.cca_id = sca.cca_id WHERE sca.school_id = schools.school_id",
	JoinProgrammes:   "school_programmes sp JOIN programmes p ON p.programme_id = sp.programme_id WHERE sp.school_id = schools.school_id",
	JoinDistinctives: "school_distinctives sd JOIN distinctive_programmes d ON d.distinctive_id = sd.distinctive_id WHERE sd.school_id = schools.school_id",
}

var joinOrder = []Join{JoinSubjects, JoinCCAs, JoinProgrammes, JoinDistinctives}

// Fields returns the searchable attributes in declaration order.
func Fields() []Field {
	return append([]Field(nil), schema...)
}

// Lookup returns the field declared for key.
func Lookup(key string) (Field, bool) {
	field, ok := schemaByKey[key]
	return field, ok
}
