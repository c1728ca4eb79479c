package events

import (
	"context"
	"time"
)

// SubjectAnalysisCompleted is the default subject for completion events.
const SubjectAnalysisCompleted = "greencode.analysis.completed"

// Publisher delivers domain events to a message bus.
type Publisher interface {
	PublishEvent(ctx context.Context, subject string, event any) error
	Close() error
}

// AnalysisCompleted is emitted after an analysis has been stored and counted.
type AnalysisCompleted struct {
	AnalysisID          string    `json:"analysisId"`
	UserID              string    `json:"userId"`
	IsGuest             bool      `json:"isGuest"`
	Language            string    `json:"language"`
	EnergyScore         int       `json:"energyScore"`
	SustainabilityScore int       `json:"sustainabilityScore"`
	Rating              string    `json:"rating"`
	CO2Grams            float64   `json:"co2Grams"`
	PotentialSaving     int       `json:"potentialSaving"`
	Detections          []string  `json:"detections"`
	CompletedAt         time.Time `json:"completedAt"`
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishEvent(context.Context, string, any) error { return nil }

func (Nop) Close() error { return nil }
