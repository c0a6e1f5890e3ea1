// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeremyhahn/go-pqsig/pkg/algorithms"
	"github.com/jeremyhahn/go-pqsig/pkg/encoding"
	"github.com/jeremyhahn/go-pqsig/pkg/keystore"
	"github.com/jeremyhahn/go-pqsig/pkg/pkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--key-dir", dir, "--log-level", "error"}, args...)
	err := Run(full, strings.NewReader(stdin), &stdout, &stderr)
	assert.False(t, algorithms.Initialized(), "registry left initialized")
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func decodeJSON(t *testing.T, s string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &out), s)
	return out
}

func TestVersion(t *testing.T) {
	dir := t.TempDir()

	r := run(t, dir, "", "version")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "pqsig version "+Version)

	r = run(t, dir, "", "version", "-o", "json")
	require.NoError(t, r.err)
	assert.Equal(t, Version, decodeJSON(t, r.stdout)["version"])
}

func TestAlgorithms(t *testing.T) {
	r := run(t, t.TempDir(), "", "algorithms", "-o", "json")
	require.NoError(t, r.err)

	var out struct {
		Algorithms []AlgorithmInfo `json:"algorithms"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out))

	byName := make(map[string]AlgorithmInfo)
	for _, a := range out.Algorithms {
		byName[a.Name] = a
	}
	mldsa, ok := byName[algorithms.NameMLDSA44]
	require.True(t, ok)
	assert.Equal(t, int(algorithms.MLDSA44), mldsa.ID)
	assert.Equal(t, 1312, mldsa.PublicKeyLen)
	assert.Equal(t, 2420, mldsa.MaxSignatureLen)

	assert.True(t, mldsa.Available)

	// every built-in is listed, missing ones with the reason
	require.Len(t, out.Algorithms, int(algorithms.Falcon1024))
	picnic, ok := byName[algorithms.NamePicnicDefault]
	require.True(t, ok)
	assert.Equal(t, int(algorithms.PicnicDefault), out.Algorithms[0].ID)
	for _, a := range out.Algorithms {
		if a.Available {
			assert.Empty(t, a.Reason, a.Name)
			continue
		}
		assert.NotEmpty(t, a.Reason, a.Name)
		assert.Zero(t, a.PublicKeyLen, a.Name)
	}

	r = run(t, t.TempDir(), "", "algorithms", "-o", "table")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, algorithms.NameEd25519Dilithium2)
	assert.Contains(t, r.stdout, algorithms.NamePicnicDefault)

	r = run(t, t.TempDir(), "", "algorithms")
	require.NoError(t, r.err)
	if !picnic.Available {
		assert.Contains(t, r.stdout, "Unavailable in this build:")
		assert.Contains(t, r.stdout, "  - picnic-default (id 1): "+picnic.Reason)
	}
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(t.TempDir(), "pqsig.prom")

	r := run(t, dir, "", "keygen", "carol", "-a", algorithms.NameMLDSA44, "--metrics-file", path)
	require.NoError(t, r.err, r.stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE pqsig_operations_total counter")
	assert.Contains(t, string(data), `pqsig_operations_total{algorithm="ml-dsa-44",operation="keygen",status="success"}`)

	r = run(t, dir, "msg", "sign", "carol", "--metrics-file", "-")
	require.NoError(t, r.err)
	assert.Contains(t, r.stderr, `operation="sign"`)

	t.Setenv("PQSIG_METRICS_FILE", path)
	require.NoError(t, os.Remove(path))
	r = run(t, dir, "msg", "sign", "carol")
	require.NoError(t, r.err)
	assert.FileExists(t, path)
}

func TestKeygenSignVerify(t *testing.T) {
	dir := t.TempDir()

	r := run(t, dir, "", "keygen", "alice", "--algorithm", algorithms.NameMLDSA44)
	require.NoError(t, r.err, r.stderr)
	assert.Contains(t, r.stdout, "Algorithm:   ml-dsa-44 (id 2)")
	assert.Contains(t, r.stdout, "Fingerprint:")

	r = run(t, dir, "", "sign", "alice", "-o", "json")
	require.NoError(t, r.err)
	// stdin was empty: an empty message is still signable
	sig := decodeJSON(t, r.stdout)
	assert.Equal(t, algorithms.NameMLDSA44, sig["algorithm"])

	r = run(t, dir, "hello pqsig", "sign", "alice")
	require.NoError(t, r.err)
	b64 := strings.TrimSpace(r.stdout)

	r = run(t, dir, "hello pqsig", "verify", "alice", "--signature", b64)
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Signature valid")

	r = run(t, dir, "hello PQSIG", "verify", "alice", "--signature", b64)
	assert.ErrorIs(t, r.err, ErrSignatureInvalid)
	assert.Contains(t, r.stdout, "Signature INVALID")
	assert.Contains(t, r.stderr, "Error: ")
}

func TestSignVerifyFiles(t *testing.T) {
	dir := t.TempDir()
	work := t.TempDir()
	msgPath := filepath.Join(work, "msg.txt")
	sigPath := filepath.Join(work, "msg.sig")
	pubPath := filepath.Join(work, "bob.pub.pem")
	require.NoError(t, os.WriteFile(msgPath, []byte("file message"), 0600))

	require.NoError(t, run(t, dir, "", "keygen", "bob", "-a", "5").err)
	require.NoError(t, run(t, dir, "", "sign", "bob", "--in", msgPath, "--out", sigPath).err)
	require.NoError(t, run(t, dir, "", "pubkey", "bob", "--out", pubPath).err)

	pemData, err := os.ReadFile(pubPath)
	require.NoError(t, err)
	typ, err := encoding.BlockType(pemData)
	require.NoError(t, err)
	assert.Equal(t, encoding.PEMTypePublicKey, typ)

	// verify against the exported PEM in a fresh key dir
	r := run(t, t.TempDir(), "", "verify", "--pubkey", pubPath, "--in", msgPath, "--sig", sigPath, "-o", "json")
	require.NoError(t, r.err, r.stderr)
	out := decodeJSON(t, r.stdout)
	assert.Equal(t, true, out["valid"])
	assert.Equal(t, algorithms.NameEd25519Dilithium2, out["algorithm"])
}

func TestKeygen_Exists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, run(t, dir, "", "keygen", "carol").err)

	r := run(t, dir, "", "keygen", "carol")
	assert.ErrorIs(t, r.err, keystore.ErrKeyExists)

	require.NoError(t, run(t, dir, "", "keygen", "carol", "--force", "-a", algorithms.NameMLDSA44).err)
	r = run(t, dir, "", "inspect", "carol", "-o", "json")
	require.NoError(t, r.err)
	assert.Equal(t, algorithms.NameMLDSA44, decodeJSON(t, r.stdout)["algorithm"])
}

func TestKeygen_UnknownAlgorithm(t *testing.T) {
	dir := t.TempDir()
	assert.ErrorIs(t, run(t, dir, "", "keygen", "x", "-a", "rsa-2048").err, pkey.ErrUnknownAlgorithm)
	assert.ErrorIs(t, run(t, dir, "", "keygen", "x", "-a", "99").err, pkey.ErrUnknownAlgorithm)
	assert.ErrorIs(t, run(t, dir, "", "keygen", "x", "-a", "Bad Name").err, pkey.ErrUnknownAlgorithm)
}

func TestKeygen_InvalidName(t *testing.T) {
	r := run(t, t.TempDir(), "", "keygen", "../escape")
	assert.ErrorIs(t, r.err, keystore.ErrInvalidName)
}

func TestListInspectDelete(t *testing.T) {
	dir := t.TempDir()

	r := run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "No keys found")

	require.NoError(t, run(t, dir, "", "keygen", "k1", "-a", algorithms.NameMLDSA44, "--format", "cbor").err)
	require.NoError(t, run(t, dir, "", "keygen", "k2", "-a", algorithms.NameMLDSA44).err)

	r = run(t, dir, "", "list", "-o", "json")
	require.NoError(t, r.err)
	var listed struct {
		Keys []keystore.Entry `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &listed))
	assert.Equal(t, []keystore.Entry{
		{Name: "k1", Private: true, Public: true},
		{Name: "k2", Private: true, Public: true},
	}, listed.Keys)

	// the stored CBOR record is read back under the default DER codec
	r = run(t, dir, "", "inspect", "k1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Type:        private")
	assert.Contains(t, r.stdout, "Format:      cbor")
	assert.Contains(t, r.stdout, "Public Key:")

	r = run(t, dir, "", "delete", "k1")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "deleted k1")
	assert.ErrorIs(t, run(t, dir, "", "delete", "k1").err, keystore.ErrKeyNotFound)

	r = run(t, dir, "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "k2 (key pair)")
	assert.NotContains(t, r.stdout, "k1")
}

func TestInspectFile(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(t.TempDir(), "pub.pem")
	require.NoError(t, run(t, dir, "", "keygen", "dave", "-a", algorithms.NameMLDSA44).err)
	require.NoError(t, run(t, dir, "", "pubkey", "dave", "--out", pubPath).err)

	r := run(t, dir, "", "inspect", "--file", pubPath, "-o", "json")
	require.NoError(t, r.err)
	out := decodeJSON(t, r.stdout)
	assert.Equal(t, "public", out["type"])
	assert.Len(t, out["public_key"], 2*1312)

	r = run(t, dir, "", "inspect", "dave", "-o", "json")
	require.NoError(t, r.err)
	assert.Equal(t, out["fingerprint"], decodeJSON(t, r.stdout)["fingerprint"])

	assert.Error(t, run(t, dir, "", "inspect").err)
}

func TestInvalidOutputFormat(t *testing.T) {
	r := run(t, t.TempDir(), "", "list", "-o", "yaml")
	assert.ErrorContains(t, r.err, "unknown output format")
	assert.Contains(t, r.stderr, "Error: unknown output format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "pqsig.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
algorithm:
  default: "ml-dsa-44"
  format: "cbor"
`), 0600))

	require.NoError(t, run(t, dir, "", "--config", cfgPath, "keygen", "erin").err)
	r := run(t, dir, "", "--config", cfgPath, "inspect", "erin", "-o", "json")
	require.NoError(t, r.err)
	out := decodeJSON(t, r.stdout)
	assert.Equal(t, algorithms.NameMLDSA44, out["algorithm"])
	assert.Equal(t, "cbor", out["format"])
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PQSIG_OUTPUT", "json")
	r := run(t, t.TempDir(), "", "list")
	require.NoError(t, r.err)
	assert.Contains(t, decodeJSON(t, r.stdout), "keys")
}

func TestCorrelationIDLogged(t *testing.T) {
	t.Setenv("PQSIG_CORRELATION_ID", "run-42")
	var stdout, stderr bytes.Buffer
	err := Run([]string{"--key-dir", t.TempDir(), "--log-level", "info", "keygen", "frank", "-a", algorithms.NameMLDSA44},
		strings.NewReader(""), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "correlation_id=run-42")
	assert.Contains(t, stderr.String(), "saved key pair")
}
