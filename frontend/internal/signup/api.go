package signup

import (
	"context"

	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/domain"
)

// ProfileFinder is the part of the API client the name lookups need.
type ProfileFinder interface {
	SuggestUsername(ctx context.Context, fullname string) (domain.Username, error)
	SearchProfiles(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error)
}

// AccountAPI is the part of the API client that finalizes a signup path.
type AccountAPI interface {
	Register(ctx context.Context, req api.RegisterRequest) (api.RegisterResponse, error)
	Resettable(ctx context.Context, email domain.Email, token domain.Token) error
	Activatable(ctx context.Context, email domain.Email) error
}
