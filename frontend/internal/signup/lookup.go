package signup

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/openreview/openreview-web/frontend/internal/debounce"
	"github.com/openreview/openreview-web/shared/domain"
	"github.com/openreview/openreview-web/shared/logger"
)

const (
	UsernameMinLength      = 1
	ProfileSearchMinLength = 2

	DefaultUsernameDelay      = 500 * time.Millisecond
	DefaultProfileSearchDelay = 300 * time.Millisecond
	DefaultProfileSearchLimit = 50
)

type LookupConfig struct {
	UsernameDelay      time.Duration
	ProfileSearchDelay time.Duration
	SearchLimit        int
}

func DefaultLookupConfig() LookupConfig {
	return LookupConfig{
		UsernameDelay:      DefaultUsernameDelay,
		ProfileSearchDelay: DefaultProfileSearchDelay,
		SearchLimit:        DefaultProfileSearchLimit,
	}
}

// NormalizeName is the form a full name is looked up under: NFC, single spaces, trimmed.
func NormalizeName(fullname string) string {
	return strings.Join(strings.Fields(norm.NFC.String(fullname)), " ")
}

// NameLookup turns full name input into a suggested username and a candidate list.
//
// Every lookup carries a sequence number; an answer that arrives after newer input was
// scheduled is dropped, so results always belong to the latest name.
type NameLookup struct {
	ctx      context.Context
	finder   ProfileFinder
	notifier Notifier
	limit    int

	username *debounce.Debouncer
	profiles *debounce.Debouncer

	onUsername func(fullname string, username domain.Username)
	onProfiles func(fullname string, profiles []domain.CandidateProfile)

	// mu also serializes delivery to the callbacks
	mu          sync.Mutex
	last        string
	started     bool
	usernameSeq uint64
	profileSeq  uint64
}

// NewNameLookup runs debounced lookups under ctx until it is cancelled or Stop is called.
func NewNameLookup(
	ctx context.Context,
	finder ProfileFinder,
	notifier Notifier,
	cfg LookupConfig,
	onUsername func(fullname string, username domain.Username),
	onProfiles func(fullname string, profiles []domain.CandidateProfile),
) *NameLookup {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultProfileSearchLimit
	}
	return &NameLookup{
		ctx:        ctx,
		finder:     finder,
		notifier:   notifier,
		limit:      cfg.SearchLimit,
		username:   debounce.New(cfg.UsernameDelay),
		profiles:   debounce.New(cfg.ProfileSearchDelay),
		onUsername: onUsername,
		onProfiles: onProfiles,
	}
}

// Update schedules lookups for new input. Nothing happens while an IME composition is
// active or when the normalized name did not change.
func (l *NameLookup) Update(fullname string, composing bool) {
	if composing {
		return
	}
	name := NormalizeName(fullname)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started && name == l.last {
		return
	}
	l.started = true
	l.last = name
	l.usernameSeq++
	l.profileSeq++
	useq, pseq := l.usernameSeq, l.profileSeq

	n := utf8.RuneCountInString(name)
	if n >= UsernameMinLength {
		l.username.Debounce(func() { l.fetchUsername(l.ctx, name, useq) })
	} else {
		l.username.Cancel()
		l.onUsername(name, "")
	}
	if n >= ProfileSearchMinLength {
		l.profiles.Debounce(func() { l.fetchProfiles(l.ctx, name, pseq) })
	} else {
		l.profiles.Cancel()
		l.onProfiles(name, []domain.CandidateProfile{})
	}
}

// LookupNow runs both lookups immediately and in parallel, superseding anything pending.
// It returns once both answers are delivered.
func (l *NameLookup) LookupNow(ctx context.Context, fullname string) {
	name := NormalizeName(fullname)
	l.username.Cancel()
	l.profiles.Cancel()

	l.mu.Lock()
	l.started = true
	l.last = name
	l.usernameSeq++
	l.profileSeq++
	useq, pseq := l.usernameSeq, l.profileSeq
	l.mu.Unlock()

	n := utf8.RuneCountInString(name)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if n < UsernameMinLength {
			l.deliverUsername(name, useq, "")
			return nil
		}
		l.fetchUsername(gctx, name, useq)
		return nil
	})
	g.Go(func() error {
		if n < ProfileSearchMinLength {
			l.deliverProfiles(name, pseq, []domain.CandidateProfile{})
			return nil
		}
		l.fetchProfiles(gctx, name, pseq)
		return nil
	})
	_ = g.Wait()
}

// Stop drops pending lookups; answers already in flight are discarded.
func (l *NameLookup) Stop() {
	l.username.Cancel()
	l.profiles.Cancel()

	l.mu.Lock()
	l.usernameSeq++
	l.profileSeq++
	l.mu.Unlock()
}

func (l *NameLookup) fetchUsername(ctx context.Context, name string, seq uint64) {
	username, err := l.finder.SuggestUsername(ctx, name)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.usernameSeq {
		lookupTotal.WithLabelValues("username", "stale").Inc()
		return
	}
	lookupTotal.WithLabelValues("username", outcome(err)).Inc()
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Str("fullname", name).Msg("username suggestion failed")
		l.notifier.Error(userMessage(err))
		username = ""
	}
	l.onUsername(name, username)
}

func (l *NameLookup) fetchProfiles(ctx context.Context, name string, seq uint64) {
	profiles, err := l.finder.SearchProfiles(ctx, name, l.limit)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.profileSeq {
		lookupTotal.WithLabelValues("profiles", "stale").Inc()
		return
	}
	lookupTotal.WithLabelValues("profiles", outcome(err)).Inc()
	if err != nil {
		logger.Ctx(ctx).Debug().Err(err).Str("fullname", name).Msg("profile search failed")
		profiles = nil
	}
	if profiles == nil {
		profiles = []domain.CandidateProfile{}
	}
	l.onProfiles(name, profiles)
}

func (l *NameLookup) deliverUsername(name string, seq uint64, username domain.Username) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq == l.usernameSeq {
		l.onUsername(name, username)
	}
}

func (l *NameLookup) deliverProfiles(name string, seq uint64, profiles []domain.CandidateProfile) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if seq == l.profileSeq {
		l.onProfiles(name, profiles)
	}
}
