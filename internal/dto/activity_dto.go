package dto

import (
	"time"

	"github.com/noah-isme/eduquery-api/internal/models"
)

// ActivityLogResponse is one activity record as served to administrators.
type ActivityLogResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Data      map[string]interface{} `json:"data"`
}

// NewActivityLogResponses converts stored records, never returning nil.
func NewActivityLogResponses(entries []models.ActivityLog) []ActivityLogResponse {
	responses := make([]ActivityLogResponse, 0, len(entries))
	for _, entry := range entries {
		data := map[string]interface{}(entry.Data)
		if data == nil {
			data = map[string]interface{}{}
		}
		responses = append(responses, ActivityLogResponse{
			Timestamp: entry.Timestamp,
			Action:    entry.Action,
			Data:      data,
		})
	}
	return responses
}

// PopularSearchResponse is a search term and its frequency.
type PopularSearchResponse struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// NewPopularSearchResponses converts term counts, never returning nil.
func NewPopularSearchResponses(terms []models.TermCount) []PopularSearchResponse {
	responses := make([]PopularSearchResponse, 0, len(terms))
	for _, term := range terms {
		responses = append(responses, PopularSearchResponse{Term: term.Term, Count: term.Count})
	}
	return responses
}
