package model

// GlobalStats — агрегат по всем пользователям.
type GlobalStats struct {
	TotalEvents      int64   `json:"total_events"`
	TotalUsers       int64   `json:"total_users"`
	AverageIntensity float64 `json:"average_intensity"`
	NightShare       float64 `json:"night_share"`
}
