package engine

import "math"

const (
	kwhPerScoreUnit  = 0.00002
	co2GramsPerKwh   = 450
	dollarsPerKwh    = 0.12
	optimizedFactor  = 0.55
	moderateFloor    = 30
	energyHeavyFloor = 60
)

// Metrics are the cost figures derived from an energy score.
type Metrics struct {
	EnergyCostKwh       float64
	CO2Grams            float64
	DollarCost          float64
	SustainabilityScore int
	Rating              Rating
	OptimizedEnergy     int
	PotentialSaving     int
}

// ComputeMetrics derives every cost figure from energyScore. CO2 and dollar
// cost are computed from the already rounded kWh value.
func ComputeMetrics(energyScore int) Metrics {
	e := float64(energyScore)
	kwh := roundTo(e*kwhPerScoreUnit, 6)
	optimized := int(math.Round(e * optimizedFactor))

	sustainability := int(math.Round(100 - e))
	if sustainability < 0 {
		sustainability = 0
	}
	if sustainability > 100 {
		sustainability = 100
	}

	return Metrics{
		EnergyCostKwh:       kwh,
		CO2Grams:            roundTo(kwh*co2GramsPerKwh, 4),
		DollarCost:          roundTo(kwh*dollarsPerKwh, 6),
		SustainabilityScore: sustainability,
		Rating:              RatingFor(energyScore),
		OptimizedEnergy:     optimized,
		PotentialSaving:     energyScore - optimized,
	}
}

// RatingFor buckets an energy score.
func RatingFor(energyScore int) Rating {
	switch {
	case energyScore < moderateFloor:
		return RatingGreenEfficient
	case energyScore < energyHeavyFloor:
		return RatingModerate
	default:
		return RatingEnergyHeavy
	}
}

var curveSizes = []int{10, 100, 500, 1000, 5000, 10000}

// ComplexityCurves returns operation counts per complexity class at fixed
// input sizes.
func ComplexityCurves() map[ComplexityClass][]CurvePoint {
	classes := map[ComplexityClass]func(n float64) float64{
		ComplexityConstant:     func(float64) float64 { return 1 },
		ComplexityLogarithmic:  math.Log2,
		ComplexityLinear:       func(n float64) float64 { return n },
		ComplexityLinearithmic: func(n float64) float64 { return n * math.Log2(n) },
		ComplexityQuadratic:    func(n float64) float64 { return n * n },
	}
	out := make(map[ComplexityClass][]CurvePoint, len(classes))
	for class, ops := range classes {
		points := make([]CurvePoint, 0, len(curveSizes))
		for _, n := range curveSizes {
			points = append(points, CurvePoint{N: n, Ops: int(math.Round(ops(float64(n))))})
		}
		out[class] = points
	}
	return out
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
