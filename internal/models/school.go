package models

import "time"

// Zone codes a school may be assigned to.
const (
	ZoneNorth   = "NORTH"
	ZoneSouth   = "SOUTH"
	ZoneEast    = "EAST"
	ZoneWest    = "WEST"
	ZoneCentral = "CENTRAL"
)

// IndicatorYes marks an enabled indicator flag. Any other value means the flag is off.
const IndicatorYes = "Yes"

// Zones lists the geographic partitions in display order.
var Zones = []string{ZoneNorth, ZoneSouth, ZoneEast, ZoneWest, ZoneCentral}

// School is the primary record of the directory.
type School struct {
	SchoolID         uint      `gorm:"column:school_id;primaryKey" json:"school_id"`
	SchoolName       string    `gorm:"column:school_name;size:255;not null;index" json:"school_name"`
	Address          string    `gorm:"column:address;size:255;not null" json:"address"`
	PostalCode       string    `gorm:"column:postal_code;size:16;not null" json:"postal_code"`
	ZoneCode         string    `gorm:"column:zone_code;size:16;not null;index" json:"zone_code"`
	MainlevelCode    string    `gorm:"column:mainlevel_code;size:64;not null" json:"mainlevel_code"`
	PrincipalName    string    `gorm:"column:principal_name;size:255;not null" json:"principal_name"`
	VPName           string    `gorm:"column:vp_name;size:255" json:"vp_name"`
	EmailAddress     string    `gorm:"column:email_address;size:255" json:"email_address"`
	FaxNo            string    `gorm:"column:fax_no;size:32" json:"fax_no"`
	TypeCode         string    `gorm:"column:type_code;size:64" json:"type_code"`
	NatureCode       string    `gorm:"column:nature_code;size:64" json:"nature_code"`
	SessionCode      string    `gorm:"column:session_code;size:64" json:"session_code"`
	DGPCode          string    `gorm:"column:dgp_code;size:64" json:"dgp_code"`
	MothertongueCode string    `gorm:"column:mothertongue_code;size:64" json:"mothertongue_code"`
	BusDesc          string    `gorm:"column:bus_desc;type:text" json:"bus_desc"`
	MRTDesc          string    `gorm:"column:mrt_desc;type:text" json:"mrt_desc"`
	AutonomousInd    string    `gorm:"column:autonomous_ind;size:8" json:"autonomous_ind"`
	GiftedInd        string    `gorm:"column:gifted_ind;size:8" json:"gifted_ind"`
	IPInd            string    `gorm:"column:ip_ind;size:8" json:"ip_ind"`
	SAPInd           string    `gorm:"column:sap_ind;size:8" json:"sap_ind"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// TableName pins the table name used by raw lookups.
func (School) TableName() string { return "schools" }
