// ABOUTME: Supabase REST client for GoTrue auth and PostgREST tables
// ABOUTME: Rate limited, reads retried on transient failures, caches the doctor list

package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/markalston/iris/internal/cache"
	"github.com/markalston/iris/internal/provider"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	objectMediaType = "application/vnd.pgrst.object+json"
	doctorsCacheKey = "doctors"
)

// Options configures a Client
type Options struct {
	BaseURL       string
	AnonKey       string
	Timeout       time.Duration
	RetryMax      int
	RetryWaitMin  time.Duration
	RetryWaitMax  time.Duration
	RateLimit     float64 // requests per second, 0 = unlimited
	CacheTTL      time.Duration
	ResetRedirect string
	Tokens        provider.TokenSource
}

// Client talks to a Supabase project
type Client struct {
	baseURL       string
	anonKey       string
	resetRedirect string
	tokens        provider.TokenSource

	http    *resty.Client
	limiter *rate.Limiter
	doctors *cache.Cache[[]provider.Doctor]
	sfGroup singleflight.Group
}

// New creates a Supabase client
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWaitMin <= 0 {
		opts.RetryWaitMin = 500 * time.Millisecond
	}
	if opts.RetryWaitMax <= 0 {
		opts.RetryWaitMax = 5 * time.Second
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	retryClient.RetryWaitMin = opts.RetryWaitMin
	retryClient.RetryWaitMax = opts.RetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = keepLastResponse
	retryClient.CheckRetry = retryIdempotent

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	restyClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient}).
		SetHeader("apikey", opts.AnonKey).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "iris-cli/1.0")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		baseURL:       baseURL,
		anonKey:       opts.AnonKey,
		resetRedirect: opts.ResetRedirect,
		tokens:        opts.Tokens,
		http:          restyClient,
		limiter:       limiter,
		doctors:       cache.New[[]provider.Doctor](opts.CacheTTL),
	}
}

// Close stops the cache sweeper
func (c *Client) Close() {
	c.doctors.Close()
}

// keepLastResponse hands the final response back once retries run out, so
// the status and body can be reported instead of a generic "giving up".
func keepLastResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

type noRetryKey struct{}

// withoutRetry marks ctx so the transport sends its request exactly once
func withoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, noRetryKey{}, true)
}

// retryIdempotent applies the default policy except to requests marked by
// withoutRetry. A write that timed out may already have been committed.
func retryIdempotent(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Value(noRetryKey{}) != nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// idempotent reports whether method may be sent more than once
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// userToken returns the signed-in bearer, or "" when logged out
func (c *Client) userToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens()
}

// request builds a rate-limited request. Authenticated calls use the
// session token; anonymous ones present the anon key.
func (c *Client) request(ctx context.Context, op string, authenticated bool) (*resty.Request, error) {
	token := c.anonKey
	if authenticated {
		token = c.userToken()
		if token == "" {
			return nil, provider.ErrNotAuthenticated
		}
	}
	return c.requestAs(ctx, op, token)
}

// requestAs builds a rate-limited request carrying token as the bearer
func (c *Client) requestAs(ctx context.Context, op, token string) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.handleRequestError(ctx, op, err)
	}
	return c.http.R().SetContext(ctx).SetAuthToken(token), nil
}

// apiError covers both GoTrue and PostgREST error bodies
type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e apiError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// do sends the request and converts failures into provider errors.
// Only idempotent methods are retried. out, when non-nil, receives the
// decoded 2xx body.
func (c *Client) do(ctx context.Context, op string, req *resty.Request, method, path string, out any) error {
	if !idempotent(method) {
		req.SetContext(withoutRetry(req.Context()))
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return c.handleRequestError(ctx, op, err)
	}

	if resp.IsError() {
		return statusError(op, resp.StatusCode(), resp.Body())
	}

	if out != nil && len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return &provider.RequestError{Op: op, Message: "invalid response from backend", Err: err}
		}
	}
	return nil
}

// handleRequestError converts transport failures to user-facing errors
func (c *Client) handleRequestError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return &provider.RequestError{Op: op, Message: "request canceled", Err: ctx.Err()}
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &provider.RequestError{Op: op, Message: "request timed out", Err: ctx.Err()}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &provider.RequestError{Op: op, Message: "request timed out", Err: err}
	}
	slog.Warn("Supabase request failed", "op", op, "error", err)
	return &provider.RequestError{
		Op:      op,
		Message: fmt.Sprintf("cannot connect to backend at %s", c.baseURL),
		Err:     err,
	}
}

func statusError(op string, status int, body []byte) error {
	var apiErr apiError
	msg := ""
	if json.Unmarshal(body, &apiErr) == nil {
		msg = apiErr.text()
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	reqErr := &provider.RequestError{Op: op, Status: status, Message: msg}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		reqErr.Err = provider.ErrNotAuthenticated
	case http.StatusNotFound, http.StatusNotAcceptable:
		// PostgREST answers 406 when a single-object read matches no row
		reqErr.Err = provider.ErrNotFound
	}
	slog.Debug("Supabase returned error status", "op", op, "status", status, "message", msg)
	return reqErr
}

// Health calls the GoTrue health endpoint
func (c *Client) Health(ctx context.Context) error {
	req, err := c.request(ctx, "health", false)
	if err != nil {
		return err
	}
	return c.do(ctx, "health", req, http.MethodGet, "/auth/v1/health", nil)
}

type gotrueUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
	} `json:"user_metadata"`
}

func (u gotrueUser) toUser() provider.User {
	return provider.User{ID: u.ID, Email: u.Email, FullName: u.UserMetadata.FullName}
}

type tokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         gotrueUser `json:"user"`
}

// SignIn uses the password grant
func (c *Client) SignIn(ctx context.Context, email, password string) (*provider.AuthResult, error) {
	const op = "sign in"
	req, err := c.request(ctx, op, false)
	if err != nil {
		return nil, err
	}
	req.SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password})

	var tok tokenResponse
	if err := c.do(ctx, op, req, http.MethodPost, "/auth/v1/token", &tok); err != nil {
		var reqErr *provider.RequestError
		if errors.As(err, &reqErr) && reqErr.Status == http.StatusBadRequest {
			reqErr.Err = provider.ErrInvalidCredentials
		}
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &provider.RequestError{Op: op, Message: "response carried no access token"}
	}

	res := &provider.AuthResult{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         tok.User.toUser(),
	}
	switch {
	case tok.ExpiresAt > 0:
		res.ExpiresAt = time.Unix(tok.ExpiresAt, 0)
	case tok.ExpiresIn > 0:
		res.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	}
	return res, nil
}

// SignUp registers a new account. The full name travels as user metadata.
func (c *Client) SignUp(ctx context.Context, input provider.SignUpInput) (*provider.User, error) {
	const op = "sign up"
	req, err := c.request(ctx, op, false)
	if err != nil {
		return nil, err
	}
	req.SetBody(map[string]any{
		"email":    input.Email,
		"password": input.Password,
		"data":     map[string]string{"full_name": input.FullName},
	})

	// with e-mail confirmation the user comes back bare, otherwise inside a session
	var body struct {
		gotrueUser
		User *gotrueUser `json:"user"`
	}
	if err := c.do(ctx, op, req, http.MethodPost, "/auth/v1/signup", &body); err != nil {
		return nil, err
	}
	u := body.gotrueUser.toUser()
	if body.User != nil && body.User.ID != "" {
		u = body.User.toUser()
	}
	return &u, nil
}

// SignOut revokes accessToken
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	const op = "sign out"
	if accessToken == "" {
		return provider.ErrNotAuthenticated
	}
	req, err := c.requestAs(ctx, op, accessToken)
	if err != nil {
		return err
	}
	return c.do(ctx, op, req, http.MethodPost, "/auth/v1/logout", nil)
}

// SendPasswordReset mails a recovery link that opens the app
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	const op = "password reset"
	req, err := c.request(ctx, op, false)
	if err != nil {
		return err
	}
	if c.resetRedirect != "" {
		req.SetQueryParam("redirect_to", c.resetRedirect)
	}
	req.SetBody(map[string]string{"email": email})
	return c.do(ctx, op, req, http.MethodPost, "/auth/v1/recover", nil)
}

// GetCurrentUser resolves the session token
func (c *Client) GetCurrentUser(ctx context.Context) (*provider.User, error) {
	const op = "get user"
	req, err := c.request(ctx, op, true)
	if err != nil {
		return nil, err
	}
	var u gotrueUser
	if err := c.do(ctx, op, req, http.MethodGet, "/auth/v1/user", &u); err != nil {
		return nil, err
	}
	out := u.toUser()
	return &out, nil
}

// GetProfile reads one row of profiles
func (c *Client) GetProfile(ctx context.Context, userID string) (*provider.Profile, error) {
	const op = "get profile"
	req, err := c.request(ctx, op, true)
	if err != nil {
		return nil, err
	}
	req.SetHeader("Accept", objectMediaType).
		SetQueryParam("select", "*").
		SetQueryParam("id", "eq."+userID)

	var p provider.Profile
	if err := c.do(ctx, op, req, http.MethodGet, "/rest/v1/profiles", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile writes name and phone and returns the stored row
func (c *Client) UpdateProfile(ctx context.Context, profile provider.Profile) (*provider.Profile, error) {
	const op = "update profile"
	req, err := c.request(ctx, op, true)
	if err != nil {
		return nil, err
	}
	req.SetHeader("Accept", objectMediaType).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+profile.ID).
		SetBody(map[string]string{"full_name": profile.FullName, "phone": profile.Phone})

	var p provider.Profile
	if err := c.do(ctx, op, req, http.MethodPatch, "/rest/v1/profiles", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAppointments returns the patient's rows ordered by date
func (c *Client) ListAppointments(ctx context.Context, patientID string) ([]provider.Appointment, error) {
	const op = "list appointments"
	req, err := c.request(ctx, op, true)
	if err != nil {
		return nil, err
	}
	req.SetQueryParams(map[string]string{
		"select":     "*",
		"patient_id": "eq." + patientID,
		"order":      "appointment_date.asc,appointment_time.asc",
	})

	list := []provider.Appointment{}
	if err := c.do(ctx, op, req, http.MethodGet, "/rest/v1/appointments", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateAppointment inserts one row and returns it
func (c *Client) CreateAppointment(ctx context.Context, appt provider.NewAppointment) (*provider.Appointment, error) {
	const op = "create appointment"
	req, err := c.request(ctx, op, true)
	if err != nil {
		return nil, err
	}
	req.SetHeader("Accept", objectMediaType).
		SetHeader("Prefer", "return=representation").
		SetBody(appt)

	var row provider.Appointment
	if err := c.do(ctx, op, req, http.MethodPost, "/rest/v1/appointments", &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDoctors returns doctors by name. Results are cached and concurrent
// misses share one request.
func (c *Client) ListDoctors(ctx context.Context) ([]provider.Doctor, error) {
	if docs, ok := c.doctors.Get(doctorsCacheKey); ok {
		return cloneDoctors(docs), nil
	}

	v, err, _ := c.sfGroup.Do(doctorsCacheKey, func() (interface{}, error) {
		return c.fetchDoctors(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cloneDoctors(v.([]provider.Doctor)), nil
}

// cloneDoctors keeps callers from writing through to the cached slice
func cloneDoctors(docs []provider.Doctor) []provider.Doctor {
	out := make([]provider.Doctor, len(docs))
	copy(out, docs)
	return out
}

func (c *Client) fetchDoctors(ctx context.Context) ([]provider.Doctor, error) {
	const op = "list doctors"
	// doctors are public, but RLS may still want a user when one exists
	authenticated := c.userToken() != ""
	req, err := c.request(ctx, op, authenticated)
	if err != nil {
		return nil, err
	}
	req.SetQueryParams(map[string]string{
		"select": "id,name,specialty",
		"order":  "name.asc",
	})

	docs := []provider.Doctor{}
	if err := c.do(ctx, op, req, http.MethodGet, "/rest/v1/doctors", &docs); err != nil {
		return nil, err
	}
	c.doctors.Set(doctorsCacheKey, docs)
	return docs, nil
}

var _ provider.Provider = (*Client)(nil)
