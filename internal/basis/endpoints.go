package basis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Metrics fetches every biometric series for the whole range in one call.
// start and end are converted to epoch seconds; the server aligns the series
// to its own day-start timestamp, returned in the response. The raw body is
// returned alongside the decoded form for raw-JSON exports.
func (c *Client) Metrics(ctx context.Context, sess *Session, start, end time.Time) (*MetricsResponse, []byte, error) {
	q := url.Values{}
	q.Set("start", fmt.Sprintf("%d", start.Unix()))
	q.Set("end", fmt.Sprintf("%d", end.Unix()))
	for _, series := range []string{"heartrate", "steps", "calories", "gsr", "skin_temp", "air_temp"} {
		q.Set(series, "true")
	}

	body, err := c.get(ctx, sess, c.baseURL+"/api/v1/metrics/me?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}

	var resp MetricsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("decode metrics response: %w", err)
	}
	return &resp, body, nil
}

// DayActivities fetches the activity records of one calendar day, filtered
// by activity type and expanded per the given selector.
func (c *Client) DayActivities(ctx context.Context, sess *Session, day, types, expand string) (*ActivitiesResponse, []byte, error) {
	q := url.Values{}
	q.Set("type", types)
	q.Set("expand", expand)

	body, err := c.get(ctx, sess, c.baseURL+"/api/v2/users/me/days/"+day+"/activities?"+q.Encode())
	if err != nil {
		return nil, nil, err
	}

	var resp ActivitiesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, nil, fmt.Errorf("decode activities response: %w", err)
	}
	return &resp, body, nil
}

// SleepDay fetches one day of sleep activities with stage and event
// expansion.
func (c *Client) SleepDay(ctx context.Context, sess *Session, day string) (*ActivitiesResponse, []byte, error) {
	return c.DayActivities(ctx, sess, day, SleepTypes, SleepExpand)
}

// WorkoutDay fetches one day of run, walk and bike activities.
func (c *Client) WorkoutDay(ctx context.Context, sess *Session, day string) (*ActivitiesResponse, []byte, error) {
	return c.DayActivities(ctx, sess, day, WorkoutTypes, WorkoutExpand)
}
