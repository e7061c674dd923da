package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/domain"
)

// SuggestUsername returns the next free tilde id for fullname.
func (c *APIClient) SuggestUsername(ctx context.Context, fullname string) (domain.Username, error) {
	var resp api.TildeUsernameResponse
	if err := c.getJSON(ctx, "/tildeusername", url.Values{"fullname": {fullname}}, &resp); err != nil {
		return "", err
	}
	return resp.Username, nil
}

// SearchProfiles finds profiles whose names match fullname.
func (c *APIClient) SearchProfiles(ctx context.Context, fullname string, limit int) ([]domain.CandidateProfile, error) {
	query := url.Values{
		"fullname": {fullname},
		"limit":    {strconv.Itoa(limit)},
		"es":       {"true"},
	}
	var resp api.ProfileSearchResponse
	if err := c.getJSON(ctx, "/profiles/search", query, &resp); err != nil {
		return nil, err
	}

	profiles := make([]domain.CandidateProfile, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		profiles = append(profiles, domain.CandidateProfile{
			Id:              p.Id,
			Emails:          p.Content.Emails,
			EmailsConfirmed: p.Content.EmailsConfirmed,
			Active:          p.Active,
			Password:        p.Password,
		})
	}
	return profiles, nil
}

// InstitutionDomains returns the email domains accepted as institutional.
func (c *APIClient) InstitutionDomains(ctx context.Context) ([]string, error) {
	var resp api.InstitutionDomainsResponse
	if err := c.getJSON(ctx, "/settings/institutionDomains", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []string{}, nil
	}
	return resp, nil
}
