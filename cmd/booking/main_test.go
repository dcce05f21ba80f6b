package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-booking/internal/auth"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	tok, err := auth.MakeToken("p1", "Ana", "secret", time.Hour)
	require.NoError(t, err)
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN", tok)
	t.Setenv("STORE_BACKEND", "memory")
}

func TestSetupLogsToGivenWriter(t *testing.T) {
	memoryEnv(t)
	var logs bytes.Buffer

	e, err := setup(context.Background(), &logs)
	require.NoError(t, err)
	defer e.close()

	assert.Equal(t, "p1", e.claims.UserID)
	assert.Contains(t, logs.String(), `"message":"session ready"`)
	assert.Contains(t, logs.String(), `"patient_id":"p1"`)
}

func TestSetupRequiresAccessToken(t *testing.T) {
	memoryEnv(t)
	t.Setenv("ACCESS_TOKEN", "")

	_, err := setup(context.Background(), &bytes.Buffer{})
	assert.ErrorContains(t, err, "ACCESS_TOKEN")
}

func TestListKeepsLogsOffStdout(t *testing.T) {
	memoryEnv(t)
	var stdout, stderr bytes.Buffer

	cmd := listCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "nenhuma consulta encontrada\n", stdout.String())
	assert.Contains(t, stderr.String(), "session ready")
}
