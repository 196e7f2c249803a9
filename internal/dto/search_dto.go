package dto

// AdvancedSearchResponse is the advanced search envelope. Criteria echoes the supplied fields.
type AdvancedSearchResponse struct {
	Success  bool              `json:"success"`
	Count    int               `json:"count"`
	Results  []SchoolResponse  `json:"results"`
	Criteria map[string]string `json:"criteria"`
}
