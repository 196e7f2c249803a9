package models

import (
	"time"

	"gorm.io/datatypes"
)

// Activity actions recorded in the auxiliary store.
const (
	ActionSearch         = "search"
	ActionAdvancedSearch = "advanced_search"
	ActionLogin          = "login"
	ActionSchoolCreated  = "school_created"
	ActionSchoolUpdated  = "school_updated"
	ActionSchoolDeleted  = "school_deleted"
	ActionSchoolImport   = "school_import"
)

// ActivityLog is the relational fallback for the append-only activity store.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Action    string            `gorm:"size:64;not null;index" json:"action"`
	Term      string            `gorm:"size:255;index" json:"term,omitempty"`
	Data      datatypes.JSONMap `gorm:"type:json" json:"data"`
	Timestamp time.Time         `gorm:"not null;index" json:"timestamp"`
}

func (ActivityLog) TableName() string { return "activity_logs" }

// TermCount is a search term with the number of times it was searched.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}
