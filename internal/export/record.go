// Package export contains the three domain pipelines (metrics, sleep,
// activities), the record flattener and the file sinks.
package export

import (
	"strconv"
	"time"

	"github.com/DukeMobileTech/basis-data-export/internal/basis"
)

// TimestampFormat renders absolute timestamps in the configured zone.
const TimestampFormat = "2006-01-02 15:04:05"

// Fixed column sets. Every emitted row has exactly these columns, in this
// order, with absent source fields flattened to the empty string.
var (
	MetricsHeader = []string{
		"username", "user_id", "timestamp",
		"heartrate", "steps", "calories", "gsr", "skintemp", "airtemp",
	}

	SleepHeader = []string{
		"username", "user_id",
		"start time", "start time ISO", "start time timezone", "start time offset",
		"end time", "end time ISO", "end time timezone", "end time offset",
		"light mins", "deep mins", "rem mins", "interruption mins", "unknown mins",
		"interruptions", "toss turns", "type", "actual seconds", "calories",
		"heart rate avg", "heart rate min", "heart rate max",
		"state", "version", "id",
	}

	ActivitiesHeader = []string{
		"username", "user_id",
		"start time", "start time ISO", "start time timezone", "start time offset",
		"end time", "end time ISO", "end time timezone", "end time offset",
		"type", "actual seconds", "steps", "calories", "minutes",
		"heart rate avg", "heart rate min", "heart rate max",
		"state", "version", "id",
	}
)

// num renders an optional numeric field, empty when absent.
func num(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// epoch renders an optional epoch-seconds field as a local timestamp.
func epoch(ts *int64, loc *time.Location) string {
	if ts == nil {
		return ""
	}
	return time.Unix(*ts, 0).In(loc).Format(TimestampFormat)
}

// timePointFields flattens one activity boundary into its four columns:
// local timestamp, ISO rendering, zone name, zone offset.
func timePointFields(tp *basis.TimePoint, loc *time.Location) []string {
	if tp == nil {
		return []string{"", "", "", ""}
	}
	name, offset := "", ""
	if tp.TimeZone != nil {
		name = tp.TimeZone.Name
		offset = num(tp.TimeZone.Offset)
	}
	return []string{epoch(tp.Timestamp, loc), tp.ISO, name, offset}
}

// heartRateFields flattens the avg/min/max summary block.
func heartRateFields(hr *basis.HeartRate) []string {
	if hr == nil {
		return []string{"", "", ""}
	}
	return []string{num(hr.Avg), num(hr.Min), num(hr.Max)}
}

// FlattenSleep maps one sleep activity to the 26-column sleep schema.
func FlattenSleep(username, studyID string, act basis.Activity, loc *time.Location) []string {
	sleep := act.Sleep
	if sleep == nil {
		sleep = &basis.SleepDetails{}
	}

	row := make([]string, 0, len(SleepHeader))
	row = append(row, username, studyID)
	row = append(row, timePointFields(act.StartTime, loc)...)
	row = append(row, timePointFields(act.EndTime, loc)...)
	row = append(row,
		num(sleep.LightMinutes), num(sleep.DeepMinutes), num(sleep.RemMinutes),
		num(sleep.InterruptionMinutes), num(sleep.UnknownMinutes),
		num(sleep.Interruptions), num(sleep.TossAndTurn),
		act.Type, num(act.ActualSeconds), num(act.Calories),
	)
	row = append(row, heartRateFields(act.HeartRate)...)
	row = append(row, act.State, act.Version.String(), act.ID)
	return row
}

// FlattenActivity maps one run/walk/bike activity to the 21-column schema.
func FlattenActivity(username, studyID string, act basis.Activity, loc *time.Location) []string {
	row := make([]string, 0, len(ActivitiesHeader))
	row = append(row, username, studyID)
	row = append(row, timePointFields(act.StartTime, loc)...)
	row = append(row, timePointFields(act.EndTime, loc)...)
	row = append(row,
		act.Type, num(act.ActualSeconds), num(act.Steps),
		num(act.Calories), num(act.Minutes),
	)
	row = append(row, heartRateFields(act.HeartRate)...)
	row = append(row, act.State, act.Version.String(), act.ID)
	return row
}

// metricsInterval is the sampling granularity of the metrics endpoint.
const metricsInterval = 60 * time.Second

// requireVitals is the row-filtering policy for metrics exports: an interval
// is emitted only when both the heartrate and gsr samples are present. Steps,
// calories and temperatures alone never produce a row.
func requireVitals(heartrate, gsr *float64) bool {
	return heartrate != nil && gsr != nil
}

// at returns series[i], or nil when the series is shorter than the
// heartrate series that drives the iteration.
func at(series []*float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	return series[i]
}

// FlattenMetrics synthesizes rows from the aligned series of one metrics
// response. Row i gets the timestamp of the response day's midnight plus
// i intervals; intervals failing requireVitals are dropped.
func FlattenMetrics(username, studyID string, resp *basis.MetricsResponse, loc *time.Location) [][]string {
	day := time.Unix(resp.StartTime, 0).In(loc)
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	m := resp.Metrics
	rows := make([][]string, 0, len(m.Heartrate.Values))
	for i := range m.Heartrate.Values {
		heartrate := m.Heartrate.Values[i]
		gsr := at(m.GSR.Values, i)
		if !requireVitals(heartrate, gsr) {
			continue
		}
		ts := base.Add(time.Duration(i) * metricsInterval)
		rows = append(rows, []string{
			username, studyID, ts.Format(TimestampFormat),
			num(heartrate), num(at(m.Steps.Values, i)), num(at(m.Calories.Values, i)),
			num(gsr), num(at(m.SkinTemp.Values, i)), num(at(m.AirTemp.Values, i)),
		})
	}
	return rows
}
