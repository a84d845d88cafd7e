package domain

import "time"

type SessionID string
type TurnID string
type PostID string

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// AnalysisCategory selects which fixed instruction prompt an image
// analysis request is paired with.
type AnalysisCategory string

const (
	CategorySoilHealth  AnalysisCategory = "soil-health"
	CategoryPestDisease AnalysisCategory = "pest-disease"
	CategoryWeather     AnalysisCategory = "weather"
)

type Timestamp = time.Time
