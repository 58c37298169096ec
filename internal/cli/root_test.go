package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/roster/internal/core"
)

// setupEnv points the store at a fresh SQLite file and returns its
// directory.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "roster.db"))
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(dir, "missing.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "roster", cmd.Use)
	assert.Contains(t, cmd.Long, "CSV import")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{{"serve"}, {"migrate"}, {"migrate", "up"}, {"migrate", "status"}, {"import"}, {"export"}}

	for _, path := range commands {
		name := strings.Join(path, " ")
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, "[.env]", envFlag.DefValue)
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	outputFlag := exportCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.Equal(t, "id", exportCmd.Flags().Lookup("sort-by").DefValue)
	assert.Equal(t, "1", exportCmd.Flags().Lookup("page").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	dir := setupEnv(t)

	_, err := execute(t, dir, "--format", "xml", "migrate", "status")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestInvalidConfig(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := execute(t, dir, "migrate", "status")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, GetExitCode(err))
}

func TestEnvFileOverridesEnvironment(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DB_DRIVER", "oracle")
	envFile := writeFile(t, dir, "test.env", "DB_DRIVER=sqlite\n")

	cmd := NewRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--env-file", envFile, "migrate", "status"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
}

func TestMigrateCommands(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DB_AUTO_MIGRATE", "false")

	out, err := execute(t, dir, "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "pending")

	out, err = execute(t, dir, "migrate", "up")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	out, err = execute(t, dir, "--format", "json", "migrate", "status")
	require.NoError(t, err)
	var sts []struct {
		Version int64
		Applied bool
	}
	require.NoError(t, json.Unmarshal([]byte(out), &sts))
	require.NotEmpty(t, sts)
	for _, st := range sts {
		assert.True(t, st.Applied)
	}
}

func TestMigrateMemoryDriver(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("DB_DRIVER", "memory")

	_, err := execute(t, dir, "migrate", "up")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestImportThenExport(t *testing.T) {
	dir := setupEnv(t)
	csvPath := writeFile(t, dir, "people.csv",
		"name,email\nCarol,carol@example.com\nAlice,alice@example.com\nshort\nBob,bob@corp.io\n")

	out, err := execute(t, dir, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 3 records")
	assert.Contains(t, out, "1 rows skipped")

	out, err = execute(t, dir, "export", "--sort-by", "name", "--per-page", "2")
	require.NoError(t, err)
	assert.Equal(t, "name,email\r\nAlice,alice@example.com\r\nBob,bob@corp.io\r\n", out)

	outFile := filepath.Join(dir, "page2.csv")
	_, err = execute(t, dir, "export", "--sort-by", "name", "--per-page", "2", "--page", "2", "-o", outFile)
	require.NoError(t, err)
	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "name,email\r\nCarol,carol@example.com\r\n", string(data))

	out, err = execute(t, dir, "export", "--search", "example.com", "--order", "desc")
	require.NoError(t, err)
	assert.Equal(t, "name,email\r\nAlice,alice@example.com\r\nCarol,carol@example.com\r\n", out)
}

func TestImportJSONOutput(t *testing.T) {
	dir := setupEnv(t)
	csvPath := writeFile(t, dir, "people.csv", "name,email\nAlice,alice@example.com\n")

	out, err := execute(t, dir, "--format", "json", "import", csvPath)
	require.NoError(t, err)

	var res core.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 0, res.Skipped)
	assert.NotEmpty(t, res.ImportID)
}

func TestImportErrors(t *testing.T) {
	dir := setupEnv(t)

	_, err := execute(t, dir, "import", filepath.Join(dir, "nope.csv"))
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))

	txtPath := writeFile(t, dir, "people.txt", "name,email\n")
	_, err = execute(t, dir, "import", txtPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ".csv")

	t.Setenv("IMPORT_MAX_FILE_SIZE", "8")
	bigPath := writeFile(t, dir, "big.csv", "name,email\nAlice,alice@example.com\n")
	_, err = execute(t, dir, "import", bigPath)
	require.Error(t, err)
	assert.Equal(t, ExitUsage, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitConfig, GetExitCode(WrapExitError(ExitConfig, "bad", assert.AnError)))
	assert.Equal(t, "bad: "+assert.AnError.Error(), WrapExitError(ExitConfig, "bad", assert.AnError).Error())
	assert.Equal(t, "plain", NewExitError(ExitUsage, "plain").Error())
}
