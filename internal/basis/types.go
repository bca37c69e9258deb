package basis

import "encoding/json"

// MetricSeries is one biometric series from the metrics endpoint, sampled at
// a fixed interval starting at the response's day-start timestamp. A nil
// entry means the device reported nothing for that interval.
type MetricSeries struct {
	Values []*float64 `json:"values"`
}

// MetricsResponse is the body of /api/v1/metrics/me.
type MetricsResponse struct {
	StartTime int64 `json:"starttime"`
	Interval  int64 `json:"interval"`
	Metrics   struct {
		Heartrate MetricSeries `json:"heartrate"`
		Steps     MetricSeries `json:"steps"`
		Calories  MetricSeries `json:"calories"`
		GSR       MetricSeries `json:"gsr"`
		SkinTemp  MetricSeries `json:"skin_temp"`
		AirTemp   MetricSeries `json:"air_temp"`
	} `json:"metrics"`
}

// TimeZone is the named-zone annotation on activity boundary timestamps.
type TimeZone struct {
	Name   string   `json:"name"`
	Offset *float64 `json:"offset"`
}

// TimePoint is an activity boundary: absolute epoch, ISO rendering, and the
// zone it was recorded in. Any part may be absent.
type TimePoint struct {
	Timestamp *int64    `json:"timestamp"`
	ISO       string    `json:"iso"`
	TimeZone  *TimeZone `json:"time_zone"`
}

// HeartRate is the summary statistics block on an activity.
type HeartRate struct {
	Avg *float64 `json:"avg"`
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// SleepDetails is the stage breakdown present only on sleep activities.
type SleepDetails struct {
	LightMinutes        *float64 `json:"light_minutes"`
	DeepMinutes         *float64 `json:"deep_minutes"`
	RemMinutes          *float64 `json:"rem_minutes"`
	InterruptionMinutes *float64 `json:"interruption_minutes"`
	UnknownMinutes      *float64 `json:"unknown_minutes"`
	Interruptions       *float64 `json:"interruptions"`
	TossAndTurn         *float64 `json:"toss_and_turn"`
}

// Activity is one reported sleep or workout event. The server splits a night
// of sleep into several activities when an interruption exceeds its
// threshold, so one day can carry any number of them.
type Activity struct {
	StartTime     *TimePoint    `json:"start_time"`
	EndTime       *TimePoint    `json:"end_time"`
	HeartRate     *HeartRate    `json:"heart_rate"`
	Sleep         *SleepDetails `json:"sleep"`
	ActualSeconds *float64      `json:"actual_seconds"`
	Calories      *float64      `json:"calories"`
	Steps         *float64      `json:"steps"`
	Minutes       *float64      `json:"minutes"`
	Type          string        `json:"type"`
	State         string        `json:"state"`
	Version       json.Number   `json:"version"`
	ID            string        `json:"id"`
}

// ActivitiesResponse is the body of the per-day activities endpoint.
type ActivitiesResponse struct {
	Content struct {
		Activities []Activity `json:"activities"`
	} `json:"content"`
}
