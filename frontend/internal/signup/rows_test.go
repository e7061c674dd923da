package signup

import (
	"testing"

	"github.com/openreview/openreview-web/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormKindFor(t *testing.T) {
	assert.Equal(t, KindExisting, FormKindFor(resetProfile))
	assert.Equal(t, KindClaim, FormKindFor(noEmailProfile), "no emails means a claim form")

	rows := NewRows([]domain.CandidateProfile{resetProfile, noEmailProfile})
	require.Equal(t, 2, rows.Len())
	assert.NotNil(t, rows.All()[0].Existing)
	assert.Nil(t, rows.All()[0].Claim)
	assert.NotNil(t, rows.All()[1].Claim)
	assert.Nil(t, rows.All()[1].Existing)
}

func TestRowsOneOpenAtATime(t *testing.T) {
	rows := NewRows([]domain.CandidateProfile{claimWithEmailProfile, noEmailProfile, resetProfile})

	first, ok := rows.Open(claimWithEmailProfile.Id)
	require.True(t, ok)
	first.Existing.SetEmail("jdoe@gmail.com")
	assert.True(t, first.PasswordVisible())

	second, ok := rows.Open(noEmailProfile.Id)
	require.True(t, ok)
	second.Claim.SetEmail("jane@anywhere.org")

	assert.False(t, first.IsOpen())
	assert.False(t, first.PasswordVisible())
	assert.Equal(t, "", first.Existing.Email(), "collapsed rows are reset")
	assert.True(t, second.PasswordVisible())
	assert.Same(t, second, rows.OpenRow())

	open := 0
	for _, r := range rows.All() {
		if r.PasswordVisible() {
			open++
		}
	}
	assert.Equal(t, 1, open)

	_, ok = rows.Open("~Nobody1")
	assert.False(t, ok)
	assert.Same(t, second, rows.OpenRow(), "unknown id changes nothing")

	rows.CloseAll()
	assert.Nil(t, rows.OpenRow())
}
