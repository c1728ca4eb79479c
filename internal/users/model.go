package users

import "time"

// offsetThreshold is the sustainability score at which an analysis counts toward savings.
const offsetThreshold = 60

// offsetFactor is the share of emitted CO2 credited as offset for a sustainable analysis.
const offsetFactor = 0.4

// Stats holds a user's running sustainability counters.
type Stats struct {
	UserID            string    `json:"userId"`
	TotalAnalyses     int       `json:"totalAnalyses"`
	TotalEnergySaved  int       `json:"totalEnergySaved"`
	TotalCO2Offset    float64   `json:"totalCO2Offset"`
	TotalCO2Emitted   float64   `json:"totalCO2Emitted"`
	SustainabilitySum int       `json:"-"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AvgSustainability returns the rounded mean sustainability score across analyses.
func (s Stats) AvgSustainability() int {
	if s.TotalAnalyses == 0 {
		return 0
	}
	return int(float64(s.SustainabilitySum)/float64(s.TotalAnalyses) + 0.5)
}

// Delta is an increment applied to a user's counters in one store operation.
type Delta struct {
	Analyses       int
	EnergySaved    int
	CO2Offset      float64
	CO2Emitted     float64
	Sustainability int
}
