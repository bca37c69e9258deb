package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DukeMobileTech/basis-data-export/internal/basis"
)

func fp(v float64) *float64 { return &v }
func ip(v int64) *int64     { return &v }

func newYorkLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestFlattenSleep_AllFieldsPresent(t *testing.T) {
	loc := newYorkLocation(t)
	start := time.Date(2024, 3, 10, 23, 15, 0, 0, loc)
	end := time.Date(2024, 3, 11, 6, 45, 0, 0, loc)

	act := basis.Activity{
		StartTime: &basis.TimePoint{
			Timestamp: ip(start.Unix()),
			ISO:       "2024-03-10T23:15:00-05:00",
			TimeZone:  &basis.TimeZone{Name: "America/New_York", Offset: fp(-5)},
		},
		EndTime: &basis.TimePoint{
			Timestamp: ip(end.Unix()),
			ISO:       "2024-03-11T06:45:00-04:00",
			TimeZone:  &basis.TimeZone{Name: "America/New_York", Offset: fp(-4)},
		},
		HeartRate: &basis.HeartRate{Avg: fp(58.5), Min: fp(44), Max: fp(92)},
		Sleep: &basis.SleepDetails{
			LightMinutes:        fp(210),
			DeepMinutes:         fp(95.5),
			RemMinutes:          fp(88),
			InterruptionMinutes: fp(12),
			UnknownMinutes:      fp(4),
			Interruptions:       fp(3),
			TossAndTurn:         fp(17),
		},
		ActualSeconds: fp(24570),
		Calories:      fp(310.2),
		Type:          "sleep",
		State:         "complete",
		Version:       json.Number("2"),
		ID:            "sleep-1",
	}

	row := FlattenSleep("alice", "S001", act, loc)
	require.Len(t, row, len(SleepHeader))
	require.Equal(t, []string{
		"alice", "S001",
		"2024-03-10 23:15:00", "2024-03-10T23:15:00-05:00", "America/New_York", "-5",
		"2024-03-11 06:45:00", "2024-03-11T06:45:00-04:00", "America/New_York", "-4",
		"210", "95.5", "88", "12", "4",
		"3", "17", "sleep", "24570", "310.2",
		"58.5", "44", "92",
		"complete", "2", "sleep-1",
	}, row)
}

func TestFlattenSleep_EmptyActivity(t *testing.T) {
	loc := newYorkLocation(t)

	row := FlattenSleep("alice", "", basis.Activity{}, loc)
	require.Len(t, row, len(SleepHeader))
	require.Equal(t, "alice", row[0])
	for i, field := range row[1:] {
		require.Empty(t, field, "column %q", SleepHeader[i+1])
	}
}

func TestFlattenActivity(t *testing.T) {
	loc := newYorkLocation(t)
	start := time.Date(2024, 3, 11, 7, 30, 0, 0, loc)

	act := basis.Activity{
		StartTime: &basis.TimePoint{
			Timestamp: ip(start.Unix()),
			ISO:       "2024-03-11T07:30:00-04:00",
			TimeZone:  &basis.TimeZone{Name: "America/New_York", Offset: fp(-4)},
		},
		HeartRate:     &basis.HeartRate{Avg: fp(121), Min: fp(88), Max: fp(154)},
		ActualSeconds: fp(1800),
		Steps:         fp(3200),
		Calories:      fp(210),
		Minutes:       fp(30),
		Type:          "run",
		State:         "complete",
		Version:       json.Number("1"),
		ID:            "run-9",
	}

	row := FlattenActivity("bob", "S002", act, loc)
	require.Len(t, row, len(ActivitiesHeader))
	require.Equal(t, []string{
		"bob", "S002",
		"2024-03-11 07:30:00", "2024-03-11T07:30:00-04:00", "America/New_York", "-4",
		"", "", "", "",
		"run", "1800", "3200", "210", "30",
		"121", "88", "154",
		"complete", "1", "run-9",
	}, row)
}

func TestFlattenMetrics(t *testing.T) {
	loc := newYorkLocation(t)
	dayStart := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)

	resp := &basis.MetricsResponse{StartTime: dayStart.Unix(), Interval: 60}
	resp.Metrics.Heartrate = basis.MetricSeries{Values: []*float64{fp(71), nil, fp(74), fp(76)}}
	resp.Metrics.GSR = basis.MetricSeries{Values: []*float64{fp(0.5), fp(0.6), nil, fp(0.8)}}
	resp.Metrics.Steps = basis.MetricSeries{Values: []*float64{fp(12), fp(0), fp(30)}}
	resp.Metrics.Calories = basis.MetricSeries{Values: []*float64{fp(1.2)}}
	resp.Metrics.SkinTemp = basis.MetricSeries{Values: []*float64{fp(91.4), fp(91.5), fp(91.6), fp(91.8)}}
	resp.Metrics.AirTemp = basis.MetricSeries{Values: []*float64{nil, nil, nil, fp(72)}}

	rows := FlattenMetrics("alice", "S001", resp, loc)

	// Intervals 1 and 2 are missing one of the two required vitals.
	require.Len(t, rows, 2)
	require.Equal(t, []string{
		"alice", "S001", "2024-03-11 00:00:00",
		"71", "12", "1.2", "0.5", "91.4", "",
	}, rows[0])
	require.Equal(t, []string{
		"alice", "S001", "2024-03-11 00:03:00",
		"76", "", "", "0.8", "91.8", "72",
	}, rows[1])
}

func TestFlattenMetrics_MidDayServerStart(t *testing.T) {
	loc := newYorkLocation(t)

	// Row timestamps count from local midnight of the response day even when
	// the server's starttime points elsewhere in that day.
	resp := &basis.MetricsResponse{
		StartTime: time.Date(2024, 3, 11, 14, 45, 0, 0, loc).Unix(),
		Interval:  60,
	}
	resp.Metrics.Heartrate = basis.MetricSeries{Values: []*float64{fp(60)}}
	resp.Metrics.GSR = basis.MetricSeries{Values: []*float64{fp(0.4)}}

	rows := FlattenMetrics("alice", "", resp, loc)
	require.Len(t, rows, 1)
	require.Equal(t, "2024-03-11 00:00:00", rows[0][2])
}
