package signup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openreview/openreview-web/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lookupRecorder collects what a NameLookup delivers.
type lookupRecorder struct {
	mu        sync.Mutex
	usernames []string
	profiles  [][]domain.CandidateProfile
}

func (r *lookupRecorder) onUsername(_ string, u domain.Username) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usernames = append(r.usernames, u)
}

func (r *lookupRecorder) onProfiles(_ string, p []domain.CandidateProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = append(r.profiles, p)
}

func (r *lookupRecorder) lastUsername() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.usernames) == 0 {
		return "", false
	}
	return r.usernames[len(r.usernames)-1], true
}

func (r *lookupRecorder) lastProfiles() ([]domain.CandidateProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.profiles) == 0 {
		return nil, false
	}
	return r.profiles[len(r.profiles)-1], true
}

var fastLookup = LookupConfig{
	UsernameDelay:      50 * time.Millisecond,
	ProfileSearchDelay: 30 * time.Millisecond,
	SearchLimit:        20,
}

func newTestLookup(t *testing.T, mock *MockAPI, notifier Notifier) (*NameLookup, *lookupRecorder) {
	t.Helper()
	rec := &lookupRecorder{}
	l := NewNameLookup(context.Background(), mock, notifier, fastLookup, rec.onUsername, rec.onProfiles)
	t.Cleanup(l.Stop)
	return l, rec
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Jane Doe", NormalizeName("  Jane \t  Doe \n"))
	// "e" followed by a combining acute accent composes to "é"
	assert.Equal(t, "Jos\u00e9", NormalizeName("Jose\u0301"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestUsernameFiresOncePerStableWindow(t *testing.T) {
	mock := &MockAPI{MockSuggestUsername: func(ctx context.Context, fullname string) (domain.Username, error) {
		assert.Equal(t, "Jane Doe", fullname, "only the final input is looked up")
		return "~Jane_Doe1", nil
	}}
	l, rec := newTestLookup(t, mock, &Collector{})

	for _, prefix := range []string{"J", "Ja", "Jan", "Jane", "Jane ", "Jane D", "Jane Do", "Jane Doe"} {
		l.Update(prefix, false)
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		u, ok := rec.lastUsername()
		return ok && u == "~Jane_Doe1"
	}, time.Second, 5*time.Millisecond)

	time.Sleep(3 * fastLookup.UsernameDelay)
	assert.Equal(t, 1, mock.Calls("SuggestUsername"))
	assert.Equal(t, 1, mock.Calls("SearchProfiles"))
}

func TestNoLookupWhileComposing(t *testing.T) {
	mock := &MockAPI{}
	l, _ := newTestLookup(t, mock, &Collector{})

	l.Update("山田", true)
	l.Update("山田太郎", true)
	time.Sleep(3 * fastLookup.UsernameDelay)

	assert.Zero(t, mock.Calls("SuggestUsername"))
	assert.Zero(t, mock.Calls("SearchProfiles"))

	l.Update("山田太郎", false)
	require.Eventually(t, func() bool {
		return mock.Calls("SuggestUsername") == 1 && mock.Calls("SearchProfiles") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestShortNameNeverSearches(t *testing.T) {
	mock := &MockAPI{}
	l, rec := newTestLookup(t, mock, &Collector{})

	l.Update("J", false)
	profiles, ok := rec.lastProfiles()
	require.True(t, ok, "the list is emptied right away")
	assert.Empty(t, profiles)

	require.Eventually(t, func() bool { return mock.Calls("SuggestUsername") == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(3 * fastLookup.ProfileSearchDelay)
	assert.Zero(t, mock.Calls("SearchProfiles"))
}

func TestClearingNameCancelsPending(t *testing.T) {
	mock := &MockAPI{}
	l, rec := newTestLookup(t, mock, &Collector{})

	l.Update("Jane Doe", false)
	l.Update("", false)
	time.Sleep(3 * fastLookup.UsernameDelay)

	assert.Zero(t, mock.Calls("SuggestUsername"))
	assert.Zero(t, mock.Calls("SearchProfiles"))
	u, ok := rec.lastUsername()
	assert.True(t, ok)
	assert.Equal(t, "", u)
}

func TestStaleResponsesAreDropped(t *testing.T) {
	slow := make(chan struct{})
	mock := &MockAPI{MockSuggestUsername: func(ctx context.Context, fullname string) (domain.Username, error) {
		if fullname == "Jane" {
			<-slow
			return "~Jane1", nil
		}
		return "~Jane_Doe1", nil
	}}
	l, rec := newTestLookup(t, mock, &Collector{})

	l.Update("Jane", false)
	require.Eventually(t, func() bool { return mock.Calls("SuggestUsername") == 1 }, time.Second, 5*time.Millisecond)

	l.Update("Jane Doe", false)
	require.Eventually(t, func() bool {
		u, ok := rec.lastUsername()
		return ok && u == "~Jane_Doe1"
	}, time.Second, 5*time.Millisecond)

	close(slow)
	time.Sleep(20 * time.Millisecond)
	u, _ := rec.lastUsername()
	assert.Equal(t, "~Jane_Doe1", u, "the older answer arrived last and was ignored")
}

func TestLookupFailures(t *testing.T) {
	notifier := &Collector{}
	mock := &MockAPI{
		MockSuggestUsername: func(ctx context.Context, fullname string) (domain.Username, error) {
			return "", errors.New("boom")
		},
		MockSearchProfiles: func(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error) {
			return nil, errors.New("boom")
		},
	}
	l, rec := newTestLookup(t, mock, notifier)

	l.LookupNow(context.Background(), "Jane Doe")

	u, ok := rec.lastUsername()
	require.True(t, ok)
	assert.Equal(t, "", u)
	assert.Equal(t, []string{msgUnexpected}, notifier.Errors(), "only the username failure is visible")

	profiles, ok := rec.lastProfiles()
	require.True(t, ok)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestLookupNow(t *testing.T) {
	mock := &MockAPI{
		MockSuggestUsername: func(ctx context.Context, fullname string) (domain.Username, error) {
			return "~Jane_Doe1", nil
		},
		MockSearchProfiles: func(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error) {
			assert.Equal(t, 20, limit)
			return []domain.CandidateProfile{resetProfile}, nil
		},
	}
	l, rec := newTestLookup(t, mock, &Collector{})

	l.Update("Jane", false)
	l.LookupNow(context.Background(), " Jane   Doe ")

	u, _ := rec.lastUsername()
	assert.Equal(t, "~Jane_Doe1", u)
	profiles, _ := rec.lastProfiles()
	assert.Equal(t, []domain.CandidateProfile{resetProfile}, profiles)

	time.Sleep(3 * fastLookup.UsernameDelay)
	assert.Equal(t, 1, mock.Calls("SuggestUsername"), "the pending debounced lookup was superseded")
}
