package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const aBcryptHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func TestParseCredentialsSplitsUsernameAndHash(t *testing.T) {
	assert := require.New(t)

	creds, err := parseCredentials([]string{"alice:" + aBcryptHash})
	assert.NoError(err)
	assert.Len(creds, 1)
	assert.Equal("alice", creds[0].Username)
	assert.Equal(aBcryptHash, creds[0].PasswordHash)
}

func TestParseCredentialsRejectsMissingColon(t *testing.T) {
	assert := require.New(t)
	_, err := parseCredentials([]string{"alice-no-colon"})
	assert.Error(err)
}

func TestParseCredentialsRejectsEmptyUsername(t *testing.T) {
	assert := require.New(t)
	_, err := parseCredentials([]string{":" + aBcryptHash})
	assert.Error(err)
}

func TestParseCredentialsRejectsNonBcryptHash(t *testing.T) {
	assert := require.New(t)
	_, err := parseCredentials([]string{"alice:not-a-bcrypt-hash"})
	assert.Error(err)
}

func TestParseCredentialsRejectsDuplicateUsername(t *testing.T) {
	assert := require.New(t)
	_, err := parseCredentials([]string{"alice:" + aBcryptHash, "alice:" + aBcryptHash})
	assert.Error(err)
}

func TestHasBcryptPrefixAcceptsAllKnownVariants(t *testing.T) {
	assert := require.New(t)
	assert.True(hasBcryptPrefix("$2a$10$xxx"))
	assert.True(hasBcryptPrefix("$2b$10$xxx"))
	assert.True(hasBcryptPrefix("$2y$10$xxx"))
	assert.False(hasBcryptPrefix("plaintext"))
}
