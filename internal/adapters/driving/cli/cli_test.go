package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/persistdb/kvlite/internal/logger"
)

// resetFlags clears sticky flag state between Execute calls.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		_ = f.Value.Set(f.DefValue)
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCommand executes the root command against a temp database and
// returns its combined output.
func runCommand(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--db", db, "--config-dir", t.TempDir()}, args...))
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dbPath = ""
		walMode = false
		codecName = ""
		configDir = ""
		verbose = false
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cli.db")
}

func TestSetGet(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "greeting", "hello")
	require.NoError(t, err)

	out, err := runCommand(t, db, "get", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(out))
}

func TestGet_MissingKeyFails(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "get", "missing")
	assert.Error(t, err)
}

func TestGet_MissingKeyWithDefault(t *testing.T) {
	db := testDB(t)

	out, err := runCommand(t, db, "get", "missing", "--default", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", strings.TrimSpace(out))
}

func TestDel(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "k", "v")
	require.NoError(t, err)
	_, err = runCommand(t, db, "del", "k")
	require.NoError(t, err)
	_, err = runCommand(t, db, "get", "k")
	assert.Error(t, err)

	// Deleting again is not an error.
	_, err = runCommand(t, db, "del", "k")
	assert.NoError(t, err)
}

func TestPop(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "x", "y")
	require.NoError(t, err)

	out, err := runCommand(t, db, "pop", "x")
	require.NoError(t, err)
	assert.Equal(t, "y", strings.TrimSpace(out))

	_, err = runCommand(t, db, "pop", "x")
	assert.Error(t, err)

	out, err = runCommand(t, db, "pop", "x", "--default", "D")
	require.NoError(t, err)
	assert.Equal(t, "D", strings.TrimSpace(out))
}

func TestKeysAndCount(t *testing.T) {
	db := testDB(t)

	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}} {
		_, err := runCommand(t, db, "set", kv[0], kv[1])
		require.NoError(t, err)
	}

	out, err := runCommand(t, db, "keys")
	require.NoError(t, err)
	for _, key := range []string{"a", "b", "c"} {
		assert.Contains(t, out, key)
	}

	out, err = runCommand(t, db, "keys", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"a"`)

	out, err = runCommand(t, db, "count")
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))
}

func TestItemsJSON(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "a", "1")
	require.NoError(t, err)

	out, err := runCommand(t, db, "items", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1"}`, strings.TrimSpace(out))
}

func TestWipe_RequiresConfirmation(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "k", "v")
	require.NoError(t, err)

	out, err := runCommand(t, db, "wipe")
	require.NoError(t, err)
	assert.Contains(t, out, "--yes")

	out, err = runCommand(t, db, "count")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))

	_, err = runCommand(t, db, "wipe", "--yes")
	require.NoError(t, err)

	out, err = runCommand(t, db, "count")
	require.NoError(t, err)
	assert.Equal(t, "0", strings.TrimSpace(out))
}

func TestAbout_SurvivesWipe(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "about", "importer resume state")
	require.NoError(t, err)
	_, err = runCommand(t, db, "set", "k", "v")
	require.NoError(t, err)
	_, err = runCommand(t, db, "wipe", "--yes")
	require.NoError(t, err)

	out, err := runCommand(t, db, "about")
	require.NoError(t, err)
	assert.Equal(t, "importer resume state", strings.TrimSpace(out))
}

func TestCompact(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "k", "v")
	require.NoError(t, err)
	_, err = runCommand(t, db, "compact")
	assert.NoError(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "doc", `{"bar":"baz"}`, "--codec", "json", "--json")
	require.NoError(t, err)

	out, err := runCommand(t, db, "get", "doc", "--codec", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"bar":"baz"}`, strings.TrimSpace(out))
}

func TestUnknownCodecFails(t *testing.T) {
	db := testDB(t)

	_, err := runCommand(t, db, "set", "k", "v", "--codec", "pickle")
	assert.Error(t, err)
}

func TestConfigSetGet(t *testing.T) {
	dir := t.TempDir()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--config-dir", dir, "config", "set", "storage.codec", "json"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		configDir = ""
	})
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"--config-dir", dir, "config", "get", "storage.codec"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "json", strings.TrimSpace(buf.String()))
}

func TestCodecFlag_OverrideWarns(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()

	resetFlags(rootCmd)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"--config-dir", dir, "config", "set", "storage.codec", "json"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		dbPath = ""
		codecName = ""
		configDir = ""
		verbose = false
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})
	require.NoError(t, rootCmd.Execute())

	logs := new(bytes.Buffer)
	logger.SetOutput(logs)

	resetFlags(rootCmd)
	rootCmd.SetArgs([]string{"--db", db, "--config-dir", dir, "--verbose", "set", "k", "v", "--codec", "gob"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, logs.String(), "overrides configured codec json")
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "kvlite version test-version-1.0.0")
}
