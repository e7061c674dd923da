package signup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmNameModalGating(t *testing.T) {
	tests := []struct {
		name  string
		agree bool
		token string
		want  bool
	}{
		{"neither", false, "", false},
		{"terms only", true, "", false},
		{"token only", false, "tok", false},
		{"both", true, "tok", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewConfirmNameModal(nil)
			m.Open()
			m.SetAgreeTerms(tt.agree)
			m.SetToken(tt.token)
			assert.Equal(t, tt.want, m.CanConfirm())
		})
	}
}

func TestConfirmNameModalLifecycle(t *testing.T) {
	var fired []string
	m := NewConfirmNameModal(func(token string) { fired = append(fired, token) })

	m.SetAgreeTerms(true)
	m.SetToken("tok")
	assert.False(t, m.CanConfirm(), "a closed modal ignores input")
	assert.ErrorIs(t, m.Confirm(), ErrInvalidTransition)

	m.Open()
	assert.Equal(t, ModalOpen, m.State())
	m.SetAgreeTerms(true)
	m.SetToken("tok")
	require.NoError(t, m.Confirm())

	assert.Equal(t, []string{"tok"}, fired)
	assert.Equal(t, ModalClosed, m.State())
	assert.False(t, m.AgreeTerms())

	m.Open()
	assert.False(t, m.CanConfirm(), "closing spent the token and cleared the checkbox")
	assert.ErrorIs(t, m.Confirm(), ErrInvalidTransition)
	assert.Len(t, fired, 1)
}

func TestConfirmNameModalClose(t *testing.T) {
	m := NewConfirmNameModal(func(string) { t.Fatal("must not fire") })
	m.Open()
	m.SetAgreeTerms(true)
	m.SetToken("tok")
	m.Close()

	m.Open()
	m.SetAgreeTerms(true)
	assert.False(t, m.CanConfirm())
}
