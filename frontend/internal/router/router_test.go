package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openreview/openreview-web/frontend/internal/setup"
	"github.com/openreview/openreview-web/shared/config"
	jwt_internal "github.com/openreview/openreview-web/shared/jwt"
)

const (
	testSecret = "test-secret"
	testCSRF   = "csrf-test-token"
)

// apiCalls counts the API calls that send mail.
type apiCalls struct {
	resets    atomic.Int32
	registers atomic.Int32
}

// fakeAPI answers the few OpenReview endpoints the routes reach. Registrations always
// fail so a signup can be retried.
func fakeAPI(t *testing.T) (*httptest.Server, *apiCalls) {
	t.Helper()
	calls := &apiCalls{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/settings/institutionDomains":
			w.Write([]byte(`["mit.edu"]`))
		case "/tildeusername":
			w.Write([]byte(`{"username":"~Jane_Doe1"}`))
		case "/resettable":
			calls.resets.Add(1)
			w.Write([]byte(`{}`))
		case "/register":
			calls.registers.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"name":"AlreadyExistsError","message":"Email already in use","status":400}`))
		default:
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func setupTestRouter(t *testing.T) (http.Handler, *apiCalls) {
	t.Helper()
	srv, calls := fakeAPI(t)

	cfg := &config.Config{
		Public: config.Public{
			Env:                       "test",
			APIBaseURL:                srv.URL,
			HomeURL:                   "https://openreview.net",
			UsernameDelay:             time.Millisecond,
			ProfileSearchDelay:        time.Millisecond,
			ProfileSearchLimit:        10,
			RecentNotesLimit:          3,
			SessionTTL:                time.Minute,
			PollTimeout:               50 * time.Millisecond,
			InstitutionDomainsRefresh: time.Minute,
			APIReadTimeout:            time.Second,
			APIWriteTimeout:           time.Second,
			EmailRateLimit:            2,
			EmailRateWindow:           time.Minute,
			LookupRateLimit:           100,
			LookupRateWindow:          time.Second,
		},
		Private: config.Private{JwtSecret: testSecret},
	}
	deps, err := setup.SetupDependencies(cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)

	return New(deps), calls
}

func withCSRF(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRF})
	return req
}

func postForm(target string, form url.Values) *http.Request {
	form.Set("csrf_token", testCSRF)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return withCSRF(req)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// startSession looks fullname up without JS and returns the signup session cookie.
func startSession(t *testing.T, h http.Handler, fullname string) *http.Cookie {
	t.Helper()
	rr := serve(h, httptest.NewRequest(http.MethodGet, "/signup?fullname="+url.QueryEscape(fullname), nil))
	require.Equal(t, http.StatusOK, rr.Code)
	for _, c := range rr.Result().Cookies() {
		if c.Name == "signup_session" {
			return c
		}
	}
	t.Fatal("no signup session cookie")
	return nil
}

func TestProbesAndAssets(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Contains(t, rr.Header().Get("Content-Security-Policy"), "challenges.cloudflare.com")

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/static/signup.js", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/svg+xml", rr.Header().Get("Content-Type"))
}

func TestSignupPage(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/signup", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	names := map[string]bool{}
	for _, c := range rr.Result().Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names["csrf_token"])
	assert.True(t, names["signup_session"])
	assert.Contains(t, rr.Body.String(), "Sign Up for OpenReview")

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/signup", rr.Header().Get("Location"))
}

func TestSignedInRedirect(t *testing.T) {
	r, _ := setupTestRouter(t)
	token, err := jwt_internal.New(testSecret, time.Hour).NewToken("~Jane_Doe1")
	require.NoError(t, err)

	for _, path := range []string{"/signup", "/reset"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: jwt_internal.AccessTokenCookie, Value: token})

		rr := serve(r, req)

		assert.Equal(t, http.StatusSeeOther, rr.Code, path)
		assert.Equal(t, "https://openreview.net", rr.Header().Get("Location"), path)
	}

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/contact", nil))
	assert.Equal(t, http.StatusOK, rr.Code, "contact is open to everyone")
}

func TestCSRFRequired(t *testing.T) {
	r, calls := setupTestRouter(t)

	form := url.Values{"email": {"jane@mit.edu"}, "cf-turnstile-response": {"tok"}}
	req := httptest.NewRequest(http.MethodPost, "/reset", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(r, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, int32(0), calls.resets.Load())
}

func TestEmailRateLimit(t *testing.T) {
	r, calls := setupTestRouter(t)

	codes := make([]int, 0, 3)
	for range 3 {
		rr := serve(r, postForm("/reset", url.Values{"email": {"Jane@MIT.edu"}, "cf-turnstile-response": {"tok"}}))
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, int32(2), calls.resets.Load())

	rr := serve(r, postForm("/reset", url.Values{"email": {"bob@mit.edu"}, "cf-turnstile-response": {"tok"}}))
	assert.Equal(t, http.StatusOK, rr.Code, "limits are per email")

	rr = serve(r, postForm("/reset", url.Values{"email": {"jane@mit.edu"}}))
	assert.Equal(t, http.StatusOK, rr.Code, "an incomplete form takes no slot")
	assert.Contains(t, rr.Body.String(), "complete the verification")
}

func TestEmailRateLimitCountsOnlySends(t *testing.T) {
	r, calls := setupTestRouter(t)
	session := startSession(t, r, "Jane Doe")

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := postForm("/signup/new", form)
		req.AddCookie(session)
		return serve(r, req)
	}
	const email = "jane@mit.edu"
	complete := url.Values{"email": {email}, "password": {"secret123"}, "confirm": {"secret123"}}
	confirm := url.Values{"step": {"confirm"}, "agree_terms": {"on"}, "cf-turnstile-response": {"tok"}}

	// revealing fields and fixing typos never counts
	for _, form := range []url.Values{
		{"email": {email}},
		{"email": {email}, "password": {"secret123"}, "confirm": {"secret12"}},
		{"email": {email}, "password": {"secret123"}, "confirm": {"secret13"}},
		{"email": {email}, "password": {"secret123"}, "confirm": {"secret14"}},
	} {
		rr := post(form)
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/signup", rr.Header().Get("Location"))
	}
	assert.Zero(t, calls.registers.Load())

	// the confirmation carries no email field, it is keyed on the form's email
	for range 3 {
		require.Equal(t, http.StatusSeeOther, post(complete).Code)
		require.Equal(t, http.StatusSeeOther, post(confirm).Code)
	}
	assert.Equal(t, int32(2), calls.registers.Load())

	req := httptest.NewRequest(http.MethodGet, "/signup", nil)
	req.AddCookie(session)
	rr := serve(r, req)
	assert.Contains(t, rr.Body.String(), "Too many requests for this email address")
	assert.Contains(t, rr.Body.String(), email, "input is kept")
}

func TestAPIRoutes(t *testing.T) {
	r, _ := setupTestRouter(t)

	req := withCSRF(httptest.NewRequest(http.MethodPost, "/api/signup/name", strings.NewReader(`{"fullname":"Jane Doe"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", testCSRF)

	rr := serve(r, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rr.Body.String(), `"version"`)

	rr = serve(r, httptest.NewRequest(http.MethodGet, "/api/profiles/not-an-id/notes", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
