package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/openreview/openreview-web/shared/api"
	"github.com/openreview/openreview-web/shared/domain"
)

// RecentNotes returns the latest publications authored by profileId, newest first.
func (c *APIClient) RecentNotes(ctx context.Context, profileId domain.ProfileId, limit int) ([]domain.Note, error) {
	query := url.Values{
		"content.authorids": {profileId},
		"sort":              {"cdate:desc"},
		"limit":             {strconv.Itoa(limit)},
	}
	var resp api.NotesResponse
	if err := c.getJSON(ctx, "/notes", query, &resp); err != nil {
		return nil, err
	}

	notes := make([]domain.Note, 0, len(resp.Notes))
	for _, n := range resp.Notes {
		notes = append(notes, domain.Note{
			Id:       n.Id,
			Forum:    n.Forum,
			Title:    n.Content.Title.Value,
			Venue:    n.Content.Venue.Value,
			Authors:  n.Content.Authors.Value,
			Created:  n.Cdate,
			Abstract: n.Content.Abstract.Value,
		})
	}
	return notes, nil
}
