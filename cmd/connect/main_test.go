// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/connectapp/connect/internal/config"
	"github.com/connectapp/connect/internal/mockapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// withBackend points the CLI at a fresh mock backend with file-backed state.
func withBackend(t *testing.T) *mockapi.Server {
	t.Helper()
	s := mockapi.New(mockapi.Config{Fixtures: mockapi.DefaultFixtures(), RequireToken: true})
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv(config.EnvConfigFile, "")
	t.Setenv(config.EnvAPIBaseURL, srv.URL+mockapi.APIPrefix)
	t.Setenv(config.EnvStoreBackend, "file")
	t.Setenv(config.EnvStorePath, filepath.Join(dir, "store.json"))
	t.Setenv(config.EnvHistoryDBPath, filepath.Join(dir, "history.db"))
	t.Setenv(config.EnvLogLevel, "error")
	return s
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "--version")
	assert.Equal(t, 0, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "connect v"))
}

func TestUnknownCommand(t *testing.T) {
	res := runCLI(t, "", "frobnicate")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Unknown command: frobnicate")

	res = runCLI(t, "")
	assert.Equal(t, 2, res.code)
	assert.Contains(t, res.stderr, "Usage: connect")
}

func TestDecode(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "", "decode", "connectapp://presenca?palestraId=42", `{"palestraId":7}`)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "42\tapp_uri\n7\tjson\n", res.stdout)

	res = runCLI(t, "", "decode", `{"outro":1}`)
	assert.Equal(t, 1, res.code)
	assert.True(t, strings.HasPrefix(res.stdout, "invalid"))
}

func TestQR(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "", "qr", "42")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "connectapp://presenca?palestraId=42\nhttp://192.168.3.30:5000/api/v1/presenca/qr?palestraId=42\n", res.stdout)

	res = runCLI(t, "", "qr")
	assert.Equal(t, 2, res.code)
}

func TestLoginScanHistoryLogout(t *testing.T) {
	withBackend(t)

	res := runCLI(t, "", "whoami")
	assert.Equal(t, 1, res.code)

	res = runCLI(t, "", "login", "--email", "participante@connect.app", "--senha", "errada")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, mockapi.MsgInvalidCredentials)

	res = runCLI(t, "", "login", "--email", "participante@connect.app", "--senha", "connect123")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Bem-vindo, participante (participante 1)")

	res = runCLI(t, "", "whoami")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "participante@connect.app")

	res = runCLI(t, "connectapp://presenca?palestraId=42\n", "scan")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, mockapi.MsgRegistered)

	res = runCLI(t, "\nnot a real payload\nconnectapp://presenca?palestraId=42\n", "scan")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "Erro: "+mockapi.MsgPalestraNotFound)
	assert.Contains(t, res.stdout, "Erro: "+mockapi.MsgAlreadyRegistered)

	res = runCLI(t, "", "history")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "42")

	res = runCLI(t, "", "logout")
	require.Equal(t, 0, res.code)

	res = runCLI(t, "", "history")
	assert.Equal(t, 1, res.code)
}

func TestScanWhileLoggedOut(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "42\n", "scan")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "É necessário estar logado para registrar presença")
}

func TestScanCameraDenied(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "42\n", "scan", "--deny-camera")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, "Permissão negada")
}

func TestSignUp(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "", "register", "--email", "novo@connect.app", "--senha", "abc", "--confirmar-senha", "abc")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "A senha deve ter pelo menos 6 caracteres")

	res = runCLI(t, "", "register", "--email", "novo@connect.app", "--senha", "segredo", "--confirmar-senha", "segredo")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, mockapi.MsgSignedUp)
}

func TestSchedule(t *testing.T) {
	withBackend(t)

	res := runCLI(t, "", "schedule")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Go na prática")
	assert.Contains(t, res.stdout, "10/05 09:00")

	res = runCLI(t, "", "schedule", "-q", "etica")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Ética e inteligência artificial")
	assert.NotContains(t, res.stdout, "Go na prática")

	res = runCLI(t, "", "schedule", "--types")
	require.Equal(t, 0, res.code)
	assert.Equal(t, "Todos\nMesa Redonda\nOficina\nPalestra\n", res.stdout)

	res = runCLI(t, "", "schedule", "--id", "43")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "Palestrantes: João Pereira")

	res = runCLI(t, "", "schedule", "--id", "999")
	assert.Equal(t, 1, res.code)
}

func TestConfigValidateAndDump(t *testing.T) {
	withBackend(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("store:\n  redis:\n    password: hunter2\n"), 0o600))
	res := runCLI(t, "", "config", "validate", "-f", good)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "is valid")

	res = runCLI(t, "", "config", "dump", "-f", good)
	require.Equal(t, 0, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "hunter2")
	assert.Contains(t, res.stdout, "baseURL:")

	res = runCLI(t, "", "config", "dump", "-f", good, "--format", "json")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"BaseURL"`)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("unknownField: 1\n"), 0o600))
	res = runCLI(t, "", "config", "validate", "--file", bad)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "Configuration error")

	res = runCLI(t, "", "config", "nope")
	assert.Equal(t, 2, res.code)
}

func TestStatus(t *testing.T) {
	withBackend(t)
	res := runCLI(t, "", "status")
	require.Equal(t, 0, res.code, res.stdout+res.stderr)
	assert.Contains(t, res.stdout, "status: healthy")
	assert.Contains(t, res.stdout, "backend")

	t.Setenv(config.EnvAPIBaseURL, "http://127.0.0.1:1/api/v1")
	res = runCLI(t, "", "status", "--json")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stdout, `"status": "unhealthy"`)
}
