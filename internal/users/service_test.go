package users

import (
	"context"
	"testing"
)

func TestRecordAnalysisAppliesOffsetThreshold(t *testing.T) {
	cases := []struct {
		name           string
		sustainability int
		wantSaved      int
		wantOffset     float64
	}{
		{name: "below_threshold", sustainability: 59, wantSaved: 0, wantOffset: 0},
		{name: "at_threshold", sustainability: 60, wantSaved: 18, wantOffset: 0.144},
		{name: "green", sustainability: 92, wantSaved: 18, wantOffset: 0.144},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(NewMemoryRepo())
			st, err := svc.RecordAnalysis(context.Background(), "u1", 0.36, 18, tc.sustainability)
			if err != nil {
				t.Fatalf("RecordAnalysis: %v", err)
			}
			if st.TotalAnalyses != 1 || st.TotalCO2Emitted != 0.36 {
				t.Fatalf("unexpected always-on counters %+v", st)
			}
			if st.TotalEnergySaved != tc.wantSaved || st.TotalCO2Offset != tc.wantOffset {
				t.Fatalf("saved=%d offset=%v, want %d/%v", st.TotalEnergySaved, st.TotalCO2Offset, tc.wantSaved, tc.wantOffset)
			}
		})
	}
}

func TestRecordAnalysisAccumulates(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	if _, err := svc.RecordAnalysis(ctx, "u1", 0.072, 4, 92); err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	st, err := svc.RecordAnalysis(ctx, "u1", 0.792, 40, 12)
	if err != nil {
		t.Fatalf("RecordAnalysis: %v", err)
	}
	if st.TotalAnalyses != 2 || st.TotalEnergySaved != 4 {
		t.Fatalf("unexpected counters %+v", st)
	}
	if st.TotalCO2Emitted != 0.864 || st.TotalCO2Offset != 0.0288 {
		t.Fatalf("emitted=%v offset=%v", st.TotalCO2Emitted, st.TotalCO2Offset)
	}
	if st.AvgSustainability() != 52 {
		t.Fatalf("avg sustainability = %d, want 52", st.AvgSustainability())
	}
}

func TestStatsDefaultsToZero(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	st, err := svc.Stats(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.UserID != "nobody" || st.TotalAnalyses != 0 || st.AvgSustainability() != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestRecordAnalysisRequiresUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if _, err := svc.RecordAnalysis(context.Background(), " ", 1, 1, 90); err == nil {
		t.Fatalf("expected error for blank user")
	}
}
