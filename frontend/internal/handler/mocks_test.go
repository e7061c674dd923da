package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openreview/openreview-web/frontend/internal/markdown"
	"github.com/openreview/openreview-web/frontend/internal/render"
	"github.com/openreview/openreview-web/frontend/internal/signup"
	"github.com/openreview/openreview-web/frontend/static"
	"github.com/openreview/openreview-web/frontend/templates"
	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/config"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/institution"
)

// MockAPI stands in for the OpenReview API client and records the last arguments.
type MockAPI struct {
	MockSuggestUsername    func(ctx context.Context, fullname string) (domain.Username, error)
	MockSearchProfiles     func(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error)
	MockRegister           func(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error)
	MockResettable         func(ctx context.Context, email domain.Email, token domain.Token) error
	MockActivatable        func(ctx context.Context, email domain.Email) error
	MockRecentNotes        func(ctx context.Context, id domain.ProfileId, limit int) ([]domain.Note, error)
	MockSendFeedback       func(ctx context.Context, feedback domain.Feedback) error
	MockInstitutionDomains func(ctx context.Context) ([]string, error)

	mu       sync.Mutex
	calls    map[string]int
	register []api.RegisterRequest
	resets   [][2]string
	feedback []domain.Feedback
}

func (m *MockAPI) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func (m *MockAPI) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *MockAPI) SuggestUsername(ctx context.Context, fullname string) (domain.Username, error) {
	m.record("SuggestUsername")
	if m.MockSuggestUsername != nil {
		return m.MockSuggestUsername(ctx, fullname)
	}
	return "", nil // Default behavior
}

func (m *MockAPI) SearchProfiles(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error) {
	m.record("SearchProfiles")
	if m.MockSearchProfiles != nil {
		return m.MockSearchProfiles(ctx, fullname, limit)
	}
	return nil, nil // Default behavior
}

func (m *MockAPI) Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error) {
	m.record("Register")
	m.mu.Lock()
	m.register = append(m.register, req)
	m.mu.Unlock()
	if m.MockRegister != nil {
		return m.MockRegister(ctx, req)
	}
	return api.RegisterResponse{Type: "register", RegisteredEmail: req.Email}, nil // Default behavior
}

func (m *MockAPI) Resettable(ctx context.Context, email domain.Email, token domain.Token) error {
	m.record("Resettable")
	m.mu.Lock()
	m.resets = append(m.resets, [2]string{email, token})
	m.mu.Unlock()
	if m.MockResettable != nil {
		return m.MockResettable(ctx, email, token)
	}
	return nil // Default behavior
}

func (m *MockAPI) Activatable(ctx context.Context, email domain.Email) error {
	m.record("Activatable")
	if m.MockActivatable != nil {
		return m.MockActivatable(ctx, email)
	}
	return nil // Default behavior
}

func (m *MockAPI) RecentNotes(ctx context.Context, id domain.ProfileId, limit int) ([]domain.Note, error) {
	m.record("RecentNotes")
	if m.MockRecentNotes != nil {
		return m.MockRecentNotes(ctx, id, limit)
	}
	return nil, nil // Default behavior
}

func (m *MockAPI) SendFeedback(ctx context.Context, feedback domain.Feedback) error {
	m.record("SendFeedback")
	m.mu.Lock()
	m.feedback = append(m.feedback, feedback)
	m.mu.Unlock()
	if m.MockSendFeedback != nil {
		return m.MockSendFeedback(ctx, feedback)
	}
	return nil // Default behavior
}

func (m *MockAPI) InstitutionDomains(ctx context.Context) ([]string, error) {
	m.record("InstitutionDomains")
	if m.MockInstitutionDomains != nil {
		return m.MockInstitutionDomains(ctx)
	}
	return []string{"mit.edu"}, nil // Default behavior
}

var (
	resetProfile = domain.CandidateProfile{
		Id: "~Jane_Doe1", Emails: []string{"j***@mit.edu"}, Active: true, Password: true,
	}
	claimProfile = domain.CandidateProfile{Id: "~Jane_Doe2"}
)

// janeDoeAPI finds one resettable and one claimable Jane Doe.
func janeDoeAPI() *MockAPI {
	return &MockAPI{
		MockSuggestUsername: func(ctx context.Context, fullname string) (domain.Username, error) {
			return "~Jane_Doe3", nil
		},
		MockSearchProfiles: func(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error) {
			return []domain.CandidateProfile{resetProfile, claimProfile}, nil
		},
	}
}

func setupTestHandler(t *testing.T, m *MockAPI) *Handler {
	t.Helper()

	renderer, err := render.Load(templates.FS, nil)
	require.NoError(t, err)

	sessions := signup.NewSessionStore(time.Minute, func(ctx context.Context) *signup.Orchestrator {
		return signup.NewOrchestrator(ctx, signup.Deps{
			Finder:   m,
			Accounts: m,
			Notes:    m,
			Lookup: signup.LookupConfig{
				UsernameDelay:      time.Millisecond,
				ProfileSearchDelay: time.Millisecond,
			},
		})
	})
	t.Cleanup(sessions.Close)

	institutions := institution.New(m)
	require.NoError(t, institutions.Update(context.Background()))

	cfg := config.Public{PollTimeout: 50 * time.Millisecond, RecentNotesLimit: 3}
	return New(renderer, cfg, markdown.New(), m, sessions, institutions, nil, static.FS)
}

// client carries cookies between requests the way a browser would.
type client struct {
	t       *testing.T
	cookies map[string]*http.Cookie
}

func newClient(t *testing.T) *client {
	return &client{t: t, cookies: make(map[string]*http.Cookie)}
}

func (c *client) do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rr
}

func (c *client) get(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	return c.do(h, httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(h http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(h, req)
}
