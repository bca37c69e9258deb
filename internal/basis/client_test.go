package basis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeMobileTech/basis-data-export/internal/common"
)

func loginHandler(cookies ...*http.Cookie) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		for _, ck := range cookies {
			http.SetCookie(w, ck)
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestLogin_Success(t *testing.T) {
	var gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotUser = r.PostFormValue("username")
		gotPass = r.PostFormValue("password")
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-123", Path: "/"})
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "abc", Path: "/"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", sess.Username)
	assert.Equal(t, "tok-123", sess.AccessToken)
	assert.Equal(t, "alice@example.com", gotUser)
	assert.Equal(t, "pw", gotPass)
}

func TestLogin_NoCookie(t *testing.T) {
	srv := httptest.NewServer(loginHandler())
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorAuthentication)
}

func TestLogin_NoAccessToken(t *testing.T) {
	srv := httptest.NewServer(loginHandler(&http.Cookie{Name: "session_id", Value: "abc", Path: "/"}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorAuthentication)
}

func TestLogin_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // force connection errors

	c := NewClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.ErrorIs(t, err, common.ErrorAuthentication)
}

// newAuthedServer serves /login plus one API handler, requiring the session
// cookie on API calls.
func newAuthedServer(t *testing.T, apiPath string, apiHandler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-123", Path: "/"})
	})
	mux.HandleFunc(apiPath, func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("access_token"); err != nil || ck.Value != "tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		apiHandler(w, r)
	})
	return httptest.NewServer(mux)
}

func TestMetrics(t *testing.T) {
	body := `{"starttime":1704085200,"interval":60,"metrics":{
		"heartrate":{"values":[62,null]},
		"steps":{"values":[10,20]},
		"calories":{"values":[1.2,1.3]},
		"gsr":{"values":[0.0005,null]},
		"skin_temp":{"values":[91.4,91.5]},
		"air_temp":{"values":[72.1,72.2]}}}`

	var gotQuery map[string][]string
	srv := newAuthedServer(t, "/api/v1/metrics/me", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(body))
	})
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	start := time.Unix(1704085200, 0)
	end := time.Unix(1704171599, 0)
	resp, raw, err := c.Metrics(context.Background(), sess, start, end)
	require.NoError(t, err)

	assert.Equal(t, []byte(body), raw)
	assert.Equal(t, int64(1704085200), resp.StartTime)
	require.Len(t, resp.Metrics.Heartrate.Values, 2)
	require.NotNil(t, resp.Metrics.Heartrate.Values[0])
	assert.Equal(t, 62.0, *resp.Metrics.Heartrate.Values[0])
	assert.Nil(t, resp.Metrics.Heartrate.Values[1])

	assert.Equal(t, "1704085200", gotQuery["start"][0])
	assert.Equal(t, "1704171599", gotQuery["end"][0])
	for _, series := range []string{"heartrate", "steps", "calories", "gsr", "skin_temp", "air_temp"} {
		assert.Equal(t, "true", gotQuery[series][0], series)
	}
}

func TestMetrics_Unauthorized(t *testing.T) {
	srv := newAuthedServer(t, "/api/v1/metrics/me", func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	// Break the session so the API rejects it.
	sess.httpClient.Jar = nil

	_, _, err = c.Metrics(context.Background(), sess, time.Unix(0, 0), time.Unix(1, 0))
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestDayActivities(t *testing.T) {
	body := `{"content":{"activities":[
		{"type":"sleep","state":"complete","version":2,"id":"act-1",
		 "start_time":{"timestamp":1704157200,"iso":"2024-01-01T21:00:00-05:00","time_zone":{"name":"America/New_York","offset":-5}},
		 "end_time":{"timestamp":1704184200,"iso":"2024-01-02T04:30:00-05:00","time_zone":{"name":"America/New_York","offset":-5}},
		 "heart_rate":{"avg":55,"min":48,"max":70},
		 "actual_seconds":27000,"calories":310,
		 "sleep":{"light_minutes":200,"deep_minutes":120,"rem_minutes":100,"interruption_minutes":20,"unknown_minutes":10,"interruptions":3,"toss_and_turn":12}}]}}`

	var gotPath, gotType, gotExpand string
	srv := newAuthedServer(t, "/api/v2/users/me/days/2024-01-01/activities", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.URL.Query().Get("type")
		gotExpand = r.URL.Query().Get("expand")
		_, _ = w.Write([]byte(body))
	})
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	resp, raw, err := c.SleepDay(context.Background(), sess, "2024-01-01")
	require.NoError(t, err)

	assert.Equal(t, []byte(body), raw)
	assert.Equal(t, "/api/v2/users/me/days/2024-01-01/activities", gotPath)
	assert.Equal(t, SleepTypes, gotType)
	assert.Equal(t, SleepExpand, gotExpand)

	require.Len(t, resp.Content.Activities, 1)
	act := resp.Content.Activities[0]
	assert.Equal(t, "sleep", act.Type)
	assert.Equal(t, "complete", act.State)
	assert.Equal(t, "2", act.Version.String())
	require.NotNil(t, act.Sleep)
	assert.Equal(t, 200.0, *act.Sleep.LightMinutes)
	require.NotNil(t, act.StartTime.TimeZone)
	assert.Equal(t, "America/New_York", act.StartTime.TimeZone.Name)
}

func TestDayActivities_EmptyBody(t *testing.T) {
	srv := newAuthedServer(t, "/api/v2/users/me/days/2024-01-01/activities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":{"activities":[]}}`))
	})
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	sess, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)

	resp, _, err := c.WorkoutDay(context.Background(), sess, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, resp.Content.Activities)
}
