package dto

import "github.com/noah-isme/eduquery-api/internal/models"

// SchoolRequest is the payload for creating or replacing a school. The six core fields are
// always required; optional fields left nil are blank on create and untouched on update.
type SchoolRequest struct {
	SchoolName       string  `json:"school_name" validate:"required,max=255"`
	Address          string  `json:"address" validate:"required,max=255"`
	PostalCode       string  `json:"postal_code" validate:"required,max=16"`
	ZoneCode         string  `json:"zone_code" validate:"required,oneof=NORTH SOUTH EAST WEST CENTRAL"`
	MainlevelCode    string  `json:"mainlevel_code" validate:"required,max=64"`
	PrincipalName    string  `json:"principal_name" validate:"required,max=255"`
	VPName           *string `json:"vp_name" validate:"omitempty,max=255"`
	EmailAddress     *string `json:"email_address" validate:"omitempty,max=255"`
	FaxNo            *string `json:"fax_no" validate:"omitempty,max=32"`
	TypeCode         *string `json:"type_code" validate:"omitempty,max=64"`
	NatureCode       *string `json:"nature_code" validate:"omitempty,max=64"`
	SessionCode      *string `json:"session_code" validate:"omitempty,max=64"`
	DGPCode          *string `json:"dgp_code" validate:"omitempty,max=64"`
	MothertongueCode *string `json:"mothertongue_code" validate:"omitempty,max=64"`
	BusDesc          *string `json:"bus_desc" validate:"omitempty,max=2000"`
	MRTDesc          *string `json:"mrt_desc" validate:"omitempty,max=2000"`
	AutonomousInd    *string `json:"autonomous_ind" validate:"omitempty,max=8"`
	GiftedInd        *string `json:"gifted_ind" validate:"omitempty,max=8"`
	IPInd            *string `json:"ip_ind" validate:"omitempty,max=8"`
	SAPInd           *string `json:"sap_ind" validate:"omitempty,max=8"`
}

// SchoolResponse serializes a school. Field order is the column order of rendered tables.
type SchoolResponse struct {
	SchoolID         uint   `json:"school_id"`
	SchoolName       string `json:"school_name"`
	Address          string `json:"address"`
	PostalCode       string `json:"postal_code"`
	ZoneCode         string `json:"zone_code"`
	MainlevelCode    string `json:"mainlevel_code"`
	PrincipalName    string `json:"principal_name"`
	VPName           string `json:"vp_name"`
	EmailAddress     string `json:"email_address"`
	FaxNo            string `json:"fax_no"`
	TypeCode         string `json:"type_code"`
	NatureCode       string `json:"nature_code"`
	SessionCode      string `json:"session_code"`
	DGPCode          string `json:"dgp_code"`
	MothertongueCode string `json:"mothertongue_code"`
	BusDesc          string `json:"bus_desc"`
	MRTDesc          string `json:"mrt_desc"`
	AutonomousInd    string `json:"autonomous_ind"`
	GiftedInd        string `json:"gifted_ind"`
	IPInd            string `json:"ip_ind"`
	SAPInd           string `json:"sap_ind"`
}

// NewSchoolResponse converts a school model into a DTO.
func NewSchoolResponse(school models.School) SchoolResponse {
	return SchoolResponse{
		SchoolID:         school.SchoolID,
		SchoolName:       school.SchoolName,
		Address:          school.Address,
		PostalCode:       school.PostalCode,
		ZoneCode:         school.ZoneCode,
		MainlevelCode:    school.MainlevelCode,
		PrincipalName:    school.PrincipalName,
		VPName:           school.VPName,
		EmailAddress:     school.EmailAddress,
		FaxNo:            school.FaxNo,
		TypeCode:         school.TypeCode,
		NatureCode:       school.NatureCode,
		SessionCode:      school.SessionCode,
		DGPCode:          school.DGPCode,
		MothertongueCode: school.MothertongueCode,
		BusDesc:          school.BusDesc,
		MRTDesc:          school.MRTDesc,
		AutonomousInd:    school.AutonomousInd,
		GiftedInd:        school.GiftedInd,
		IPInd:            school.IPInd,
		SAPInd:           school.SAPInd,
	}
}

// NewSchoolResponses converts a slice of schools, never returning nil.
func NewSchoolResponses(schools []models.School) []SchoolResponse {
	responses := make([]SchoolResponse, 0, len(schools))
	for _, school := range schools {
		responses = append(responses, NewSchoolResponse(school))
	}
	return responses
}

// SchoolDeletedResponse identifies the removed school.
type SchoolDeletedResponse struct {
	SchoolID   uint   `json:"school_id"`
	SchoolName string `json:"school_name"`
}

// SchoolStatsResponse reports directory totals.
type SchoolStatsResponse struct {
	TotalSchools int64 `json:"total_schools"`
}

// SchoolImportResponse summarises a CSV import.
type SchoolImportResponse struct {
	Imported int `json:"imported"`
}
