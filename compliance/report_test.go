package compliance_test

import (
	"testing"
	"time"

	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/trip"
)

func TestUtilization_DeterministicRounding(t *testing.T) {
	cases := []struct {
		used int
		want string
	}{
		{0, "0"},
		{45, "50"},
		{30, "33.3"},
		{90, "100"},
		{100, "111.1"},
	}
	for _, tc := range cases {
		if got := compliance.Utilization(tc.used).String(); got != tc.want {
			t.Errorf("Utilization(%d) = %s, want %s", tc.used, got, tc.want)
		}
	}
}

func TestBuildReport_LinesOrderedAndWorstStatus(t *testing.T) {
	e := trip.Employee{ID: "e1", Name: "Ada", Active: true}
	trips := []trip.Trip{
		mkTrip("late", day(time.June, 1), day(time.June, 10)),
		mkTrip("early", day(time.January, 1), day(time.March, 31)), // 90 days, critical
	}

	report := compliance.BuildReport(e, trips, compliance.Config{})

	if len(report.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(report.Lines))
	}
	if report.Lines[0].TripID != "early" {
		t.Errorf("lines must be ordered by start date, first = %s", report.Lines[0].TripID)
	}
	if report.WorstStatus != compliance.StatusCritical {
		t.Errorf("worst status = %s, want critical", report.WorstStatus)
	}
	if report.Lines[0].Utilization.String() != "100" {
		t.Errorf("critical line utilization = %s, want 100", report.Lines[0].Utilization.String())
	}
}

func TestBuildReport_NoTrips(t *testing.T) {
	report := compliance.BuildReport(trip.Employee{ID: "e1", Name: "Ada"}, nil, compliance.Config{})
	if len(report.Lines) != 0 {
		t.Errorf("empty trip set should produce no lines")
	}
	if report.WorstStatus != compliance.StatusSafe {
		t.Errorf("worst status = %s, want safe", report.WorstStatus)
	}
}
