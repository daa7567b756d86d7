package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schematiq/schematiq/internal/plan"
)

const secret = "test-secret-of-sufficient-length"

func TestIssueVerify(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	tok, err := iss.Issue(Claims{UserID: "mock_user_123", Tier: plan.ModeStrategist})
	require.NoError(t, err)

	got, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "mock_user_123", Tier: plan.ModeStrategist}, got)
}

func TestIssue_DefaultsToEverydayTier(t *testing.T) {
	iss, err := NewIssuer(secret, 0)
	require.NoError(t, err)

	tok, err := iss.Issue(Claims{UserID: "u"})
	require.NoError(t, err)

	got, err := iss.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, plan.ModeEveryday, got.Tier)
}

func TestIssue_RequiresUser(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)

	_, err = iss.Issue(Claims{})
	assert.ErrorIs(t, err, plan.ErrInvalidRequest)
}

func TestVerify_Rejects(t *testing.T) {
	iss, err := NewIssuer(secret, time.Hour)
	require.NoError(t, err)
	tok, err := iss.Issue(Claims{UserID: "u", Tier: plan.ModeEveryday})
	require.NoError(t, err)

	other, err := NewIssuer("another-secret-of-enough-length", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong key")

	_, err = iss.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken, "garbage")

	_, err = iss.Verify(tok[:len(tok)-2])
	assert.ErrorIs(t, err, ErrInvalidToken, "tampered signature")
}

func TestVerify_Expired(t *testing.T) {
	iss, err := NewIssuer(secret, time.Minute)
	require.NoError(t, err)
	start := time.Now()
	iss.now = func() time.Time { return start }

	tok, err := iss.Issue(Claims{UserID: "u"})
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = iss.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewIssuer_WeakSecret(t *testing.T) {
	_, err := NewIssuer("short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakSecret)
}
