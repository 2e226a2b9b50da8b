package models

// Activity windows are 100 readings of accelerometer and gyroscope x, y, z.
const (
	ActivityWindowLength = 100
	ActivityChannels     = 6
)

type ActivityCheckRequest struct {
	Location CoordinateInput `json:"location"`
	Samples  [][]float64     `json:"samples" validate:"required,len=100,dive,len=6"`
}

// AudioCheckRequest carries at most ten seconds of 16 kHz mono audio.
type AudioCheckRequest struct {
	Location CoordinateInput `json:"location"`
	Samples  []float64       `json:"samples" validate:"required,min=1,max=160000"`
}

type ActivityCheckResult struct {
	Activity string `json:"activity"`
	Alert    *Alert `json:"alert,omitempty"`
}

type AudioCheckResult struct {
	KeywordDetected bool    `json:"keywordDetected"`
	Confidence      float64 `json:"confidence"`
	Alert           *Alert  `json:"alert,omitempty"`
}
