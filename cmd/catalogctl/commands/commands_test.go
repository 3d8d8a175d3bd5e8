package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("BCRYPT_COST", "4")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		driver, jsonOutput, verbose = "", false, false
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, "user", "hash-password", "secret123")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret123")))
}

func TestHashPassword_RejectsWeakPassword(t *testing.T) {
	_, err := run(t, "user", "hash-password", "short")
	assert.Error(t, err)
}

func TestJournalList_Empty(t *testing.T) {
	out, err := run(t, "--driver", "memory", "journal", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No pending operations")
}

func TestCategoriesCheck_EmptyTreeIsConsistent(t *testing.T) {
	out, err := run(t, "--driver", "memory", "categories", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Category tree is consistent")
}

func TestPromote_UnknownUser(t *testing.T) {
	_, err := run(t, "--driver", "memory", "user", "promote", "nobody@example.com")
	assert.Error(t, err)
}
