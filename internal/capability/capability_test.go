package capability

import (
	"context"
	"testing"
	"time"

	"bookclub/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "a-capability-secret-for-tests"
	postA      = "7d1f1a8e-0a8f-4c0e-9a55-3b1f0c7e6a01"
	postB      = "0b8c6f64-1d2e-4c3f-8a9b-5e6d7c8b9a02"
)

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckSecret(hash, "hunter2"))
	assert.False(t, CheckSecret(hash, "hunter3"))
	assert.False(t, CheckSecret("not-a-hash", "hunter2"))
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	require.NoError(t, err)
	b, err := GenerateSecret()
	require.NoError(t, err)

	assert.Len(t, a, 2*generatedSecretBytes)
	assert.NotEqual(t, a, b)
}

func TestIssueAndAuthorize(t *testing.T) {
	svc := NewService(testSecret, 15*time.Minute)

	grant, err := svc.Issue(postA)
	require.NoError(t, err)
	assert.NotEmpty(t, grant.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), grant.ExpiresAt, 2*time.Second)

	assert.NoError(t, svc.Authorize(context.Background(), grant.Token, postA))
}

func TestAuthorize_Rejections(t *testing.T) {
	svc := NewService(testSecret, time.Minute)
	grant, err := svc.Issue(postA)
	require.NoError(t, err)

	other := NewService("some-other-secret-entirely", time.Minute)
	foreign, err := other.Issue(postA)
	require.NoError(t, err)

	wrongScope, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope: "post:read",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   postA,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Scope:            ScopePostWrite,
		RegisteredClaims: jwt.RegisteredClaims{Subject: postA},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		postID string
		want   error
	}{
		{"missing", "", postA, ErrMissingToken},
		{"garbage", "not.a.token", postA, ErrInvalidToken},
		{"other signing key", foreign.Token, postA, ErrInvalidToken},
		{"other post", grant.Token, postB, ErrWrongPost},
		{"wrong scope", wrongScope, postA, ErrInvalidToken},
		{"no expiry", noExpiry, postA, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(context.Background(), tt.token, tt.postID)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}
}

func TestAuthorize_Expired(t *testing.T) {
	svc := NewService(testSecret, time.Minute)
	issuedAt := time.Now()
	svc.now = func() time.Time { return issuedAt }
	grant, err := svc.Issue(postA)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	err = svc.Authorize(context.Background(), grant.Token, postA)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Contains(t, err.Error(), "expired")
}

func TestAuthorize_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewService(testSecret, time.Minute)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Scope: ScopePostWrite,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   postA,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Authorize(context.Background(), token, postA), ErrInvalidToken)
}
