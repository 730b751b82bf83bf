package models

// Traffic is a point-in-time usage sample for one client label
type Traffic struct {
	Up    int64 `json:"up"`
	Down  int64 `json:"down"`
	Total int64 `json:"total"`
}
