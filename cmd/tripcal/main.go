/*
main.go - tripcal, the terminal front door to the compliance engine

PURPOSE:
  Runs the same engine the browser tool embeds, against a live backend
  or a JSON snapshot file:

    tripcal report [employee-id]   per-trip compliance report
    tripcal calendar               budgeted text calendar render

  The calendar subcommand drives the real render scheduler through a
  terminal RowSink, so overflow/backpressure behaves exactly as it
  does in the browser host.

INPUT:
  --server URL   fetch the snapshot over HTTP (default localhost:8080)
  --file PATH    read a SnapshotPayload JSON file instead
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/trip-engine/calendar"
	"github.com/warp/trip-engine/client"
	"github.com/warp/trip-engine/compliance"
	"github.com/warp/trip-engine/render"
	"github.com/warp/trip-engine/trip"
)

var (
	serverURL  string
	inputFile  string
	weeks      int
	warning    int
	budget     int
	filterTerm string
)

func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	root := &cobra.Command{
		Use:   "tripcal",
		Short: "Schengen trip compliance from the terminal",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "backend base URL")
	root.PersistentFlags().StringVar(&inputFile, "file", "", "read snapshot from a JSON file instead of the backend")
	root.PersistentFlags().IntVar(&warning, "warning-threshold", 0, "warning cutoff (0 = default)")

	report := &cobra.Command{
		Use:   "report [employee-id]",
		Short: "Print per-trip compliance status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context(), log)
			if err != nil {
				return err
			}
			only := ""
			if len(args) == 1 {
				only = args[0]
			}
			return runReport(snap, only)
		},
	}

	cal := &cobra.Command{
		Use:   "calendar",
		Short: "Render the trip calendar as text",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := loadSnapshot(cmd.Context(), log)
			if err != nil {
				return err
			}
			return runCalendar(cmd.Context(), snap, log)
		},
	}
	cal.Flags().IntVar(&weeks, "weeks", 0, "look-ahead weeks (clamped 4..10, 0 = default)")
	cal.Flags().IntVar(&budget, "budget", render.DefaultBudget, "render operation budget")
	cal.Flags().StringVar(&filterTerm, "filter", "", "employee name filter")

	root.AddCommand(report, cal)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSnapshot(ctx context.Context, log logrus.FieldLogger) (trip.Snapshot, error) {
	var payload trip.SnapshotPayload
	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return trip.Snapshot{}, err
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return trip.Snapshot{}, fmt.Errorf("parse %s: %w", inputFile, err)
		}
	} else {
		var err error
		payload, err = client.New(serverURL).FetchSnapshot(ctx)
		if err != nil {
			return trip.Snapshot{}, err
		}
	}
	return trip.BuildSnapshot(payload, log), nil
}

func runReport(snap trip.Snapshot, onlyEmployee string) error {
	cfg := compliance.Config{WarningThreshold: warning}
	byEmp := snap.TripsByEmployee()

	for _, e := range snap.Employees {
		if onlyEmployee != "" && e.ID != onlyEmployee {
			continue
		}
		report := compliance.BuildReport(e, byEmp[e.ID], cfg)
		fmt.Printf("%s (%s) — worst: %s\n", report.EmployeeName, report.EmployeeID, report.WorstStatus)
		for _, line := range report.Lines {
			fmt.Printf("  %-12s %s..%s %3dd  used=%3d (%s%%)  %s\n",
				line.TripID, line.Start, line.End, line.Days,
				line.DaysUsed, line.Utilization.String(), line.Status)
		}
	}
	return nil
}

func runCalendar(ctx context.Context, snap trip.Snapshot, log logrus.FieldLogger) error {
	vr := calendar.NewVisibleRange(calendar.Today(), weeks)
	cache := compliance.NewCache(compliance.Config{WarningThreshold: warning})

	sched := render.NewScheduler(log)
	sched.Budget = budget

	sink := &textSink{out: os.Stdout}
	result, err := sched.Render(ctx, snap, vr, cache, sink, filterTerm)
	if err != nil {
		return err
	}
	sink.flush()

	switch result.Outcome {
	case render.OutcomeNoData:
		fmt.Println("no employees match")
	case render.OutcomeOverflow:
		fmt.Printf("⚠ render budget exhausted after %d rows — narrow the filter or range\n", result.RowsDone)
	}
	return nil
}

// textSink renders rows as one line of risk tint characters with trip
// bars drawn on top.
type textSink struct {
	out   *os.File
	name  string
	cells []byte
}

func (s *textSink) StartRow(e trip.Employee) {
	s.flush()
	s.name = e.Name
	s.cells = s.cells[:0]
}

func (s *textSink) DayCell(day calendar.DayInfo, risk compliance.RiskSnapshot) {
	ch := byte('.')
	switch risk.Level {
	case compliance.RiskCaution:
		ch = '!'
	case compliance.RiskCritical:
		ch = 'X'
	default:
		if day.IsWeekend {
			ch = ' '
		}
	}
	s.cells = append(s.cells, ch)
}

func (s *textSink) TripBar(t trip.Trip, p calendar.Placement, st compliance.TripStatus) {
	ch := byte('=')
	switch st.Status {
	case compliance.StatusWarning:
		ch = '~'
	case compliance.StatusCritical:
		ch = '#'
	}
	if t.Ghosted {
		ch = '-'
	}
	for i := p.OffsetDays; i < p.OffsetDays+p.DurationDays && i < len(s.cells); i++ {
		s.cells[i] = ch
	}
}

func (s *textSink) flush() {
	if s.name == "" {
		return
	}
	fmt.Fprintf(s.out, "%-24s |%s|\n", s.name, s.cells)
	s.name = ""
}
