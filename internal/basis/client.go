// Package basis is the HTTP client for the Basis web API: cookie-based
// login and the three data endpoints (metrics, sleep, activities).
package basis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/DukeMobileTech/basis-data-export/internal/common"
)

// Activity type and expansion selectors for the per-day endpoint.
const (
	SleepTypes    = "sleep"
	SleepExpand   = "activities.stages,activities.events"
	WorkoutTypes  = "run,walk,bike"
	WorkoutExpand = "activities"
)

// Client issues requests against one Basis server. It is safe to share
// across pipelines; per-account state lives in Session.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient returns a Client for the given base URL, e.g.
// "https://app.mybasis.com". The timeout applies to every request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// Session is the authenticated context for one account: the access token and
// the cookie state the server set at login. Each Session owns its cookie
// jar, so sessions for different accounts never share transport state.
type Session struct {
	Username    string
	AccessToken string

	httpClient *http.Client
}

// Login posts the credentials as form fields and inspects the resulting
// cookie state. It fails with common.ErrorAuthentication when the transport
// call errors, when no session cookie came back, or when the cookies carry
// no access-token value.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %v", common.ErrorAuthentication, err)
	}
	hc := &http.Client{Jar: jar, Timeout: c.timeout}

	form := url.Values{
		"username": {username},
		"password": {password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorAuthentication, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", common.ErrorAuthentication, err)
	}

	cookies := jar.Cookies(base)
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: no session cookie received, check username and password", common.ErrorAuthentication)
	}

	token := ""
	for _, ck := range cookies {
		if ck.Name == common.AccessTokenCookieName {
			token = ck.Value
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("%w: unable to get an access token", common.ErrorAuthentication)
	}

	return &Session{Username: username, AccessToken: token, httpClient: hc}, nil
}

// get performs an authenticated GET using the session's cookie state and
// returns the raw response body. A 401 maps to common.ErrorUnauthorized.
func (c *Client) get(ctx context.Context, sess *Session, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := sess.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", common.ErrorUnauthorized, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}
