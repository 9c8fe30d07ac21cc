package cgi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lunarcoffee/lucent/internal/wire"
)

func newTestRequest() *wire.Request {
	req := &wire.Request{
		RawMethod:  "GET",
		Path:       "/scripts/hello_cgi",
		RemoteAddr: "203.0.113.7:54321",
	}
	req.Headers.Add("Accept", "text/html")
	req.Headers.Add("Authorization", "Basic dXNlcjpwYXNz")
	return req
}

func TestBuildEnvOmitsAuthVarsWhenUnauthenticated(t *testing.T) {
	assert := require.New(t)

	env := buildEnv(newTestRequest(), Params{
		ScriptName: "/scripts/hello_cgi",
		ServerName: "example.com",
		ServerPort: "8080",
	})

	assert.NotContains(env, "AUTH_TYPE=Basic")
	assert.False(containsPrefix(env, "REMOTE_USER="))
}

func TestBuildEnvIncludesAuthVarsWhenAuthenticated(t *testing.T) {
	assert := require.New(t)

	env := buildEnv(newTestRequest(), Params{
		ScriptName: "/scripts/hello_cgi",
		ServerName: "example.com",
		ServerPort: "8080",
		RemoteUser: "alice",
	})

	assert.Contains(env, "AUTH_TYPE=Basic")
	assert.Contains(env, "REMOTE_USER=alice")
}

func TestBuildEnvStripsAuthorizationHeaderUnlessForwarded(t *testing.T) {
	assert := require.New(t)

	req := newTestRequest()

	unforwarded := buildEnv(req, Params{AuthForwarded: false})
	assert.False(containsPrefix(unforwarded, "HTTP_AUTHORIZATION="))

	forwarded := buildEnv(req, Params{AuthForwarded: true})
	assert.True(containsPrefix(forwarded, "HTTP_AUTHORIZATION="))
}

func TestBuildEnvUpperSnakeCasesHeaderNames(t *testing.T) {
	assert := require.New(t)

	env := buildEnv(newTestRequest(), Params{})
	assert.True(containsPrefix(env, "HTTP_ACCEPT=text/html"))
}

func containsPrefix(env []string, prefix string) bool {
	for _, e := range env {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
