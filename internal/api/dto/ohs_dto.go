package dto

// OHSStatsResponse summarizes hazard case counts.
type OHSStatsResponse struct {
	Total  int64 `json:"total"`
	Open   int64 `json:"open"`
	Closed int64 `json:"closed"`
}
