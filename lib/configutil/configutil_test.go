package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Fetch struct {
		TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
		UserAgent  string `json:"user_agent" yaml:"user_agent"`
	} `json:"fetch" yaml:"fetch"`
	Selectors map[string]string `json:"selectors" yaml:"selectors"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "legiscrape.json5"), `{
		// defaults
		fetch: { timeout_sec: 30, user_agent: "legiscrape" },
		selectors: { row: "table tr", name: "td a" },
	}`)
	writeFile(t, filepath.Join(dir, "legiscrape.local.json5"), `{
		fetch: { timeout_sec: 5 },
		selectors: { row: "div.member" },
	}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "legiscrape.json5"))
	require.NoError(t, err)
	require.Equal(t, 5, config.Fetch.TimeoutSec)
	require.Equal(t, "legiscrape", config.Fetch.UserAgent)
	require.Equal(t, map[string]string{"row": "div.member", "name": "td a"}, config.Selectors)
}

func TestReadConfigYaml(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "legiscrape.yaml"), "fetch:\n  timeout_sec: 12\nselectors:\n  row: li\n")

	config, err := ReadConfig[testConfig](filepath.Join(dir, "legiscrape.yaml"))
	require.NoError(t, err)
	require.Equal(t, 12, config.Fetch.TimeoutSec)
	require.Equal(t, "li", config.Selectors["row"])
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestMerge(t *testing.T) {
	base := testConfig{Selectors: map[string]string{"a": "1", "b": "2"}}
	base.Fetch.TimeoutSec = 30
	override := testConfig{Selectors: map[string]string{"b": "3"}}

	merged, err := Merge(base, override)
	require.NoError(t, err)
	require.Equal(t, 30, merged.Fetch.TimeoutSec)
	require.Equal(t, map[string]string{"a": "1", "b": "3"}, merged.Selectors)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "telemetry.local.json5"), `{ selectors: { row: "tr" } }`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "telemetry.json5"))
	require.NoError(t, err)
	require.Equal(t, "tr", config.Selectors["row"])
}

func TestReadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legiscrape.json5")
	writeFile(t, path, `{ fetch: `)

	_, err := ReadConfig[testConfig](path)
	require.ErrorContains(t, err, path)

	_, err = ReadConfig[testConfig](filepath.Join(dir, "legiscrape.toml"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalName(t *testing.T) {
	require.Equal(t, "/etc/legiscrape.local.json5", localName("/etc/legiscrape.json5"))
	require.Equal(t, "config.local.yaml", localName("config.yaml"))
}

func TestReadRecursively(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "legiscrape.json5"), `{ fetch: { timeout_sec: 7 } }`)
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() { os.Chdir(cwd) })

	config, err := ReadRecursively[testConfig]("legiscrape.json5")
	require.NoError(t, err)
	require.Equal(t, 7, config.Fetch.TimeoutSec)
}
