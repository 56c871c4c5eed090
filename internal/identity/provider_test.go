package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderDisabled(t *testing.T) {
	p := NewProvider("", "")
	assert.False(t, p.Enabled())

	user, err := p.ValidateToken(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestValidateTokenSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer good-token", r.Header.Get("Authorization"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"uid-1","email":"ana@example.com","user_metadata":{"name":"Ana"}}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "service-key")
	require.True(t, p.Enabled())

	user, err := p.ValidateToken(context.Background(), "good-token")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "Ana", user.Name)
}

func TestValidateTokenRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid JWT"}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "")
	user, err := p.ValidateToken(context.Background(), "expired-token")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestValidateTokenEmptySubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := NewProvider(srv.URL, "")
	user, err := p.ValidateToken(context.Background(), "odd-token")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestValidateTokenTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // force connection refused

	p := NewProvider(srv.URL, "")
	user, err := p.ValidateToken(context.Background(), "token")
	assert.Error(t, err)
	assert.Nil(t, user)
}
