package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileconv/internal/config"
	"fileconv/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	service    *testsupport.FakeService
	configPath string
	workDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	for _, key := range []string{"FILECONV_SERVER_URL", "FILECONV_REQUEST_TIMEOUT", "FILECONV_LOG_LEVEL", "NO_COLOR"} {
		t.Setenv(key, "")
	}
	svc := testsupport.NewFakeService(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithServer(svc.URL),
		testsupport.WithMetricsTextfile("metrics/fileconv.prom"),
	)
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	workDir := filepath.Join(base, "work")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work dir: %v", err)
	}
	return &cliTestEnv{cfg: cfg, service: svc, configPath: configPath, workDir: workDir}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[server]
base_url = %q

[conversion]
progress_interval_ms = %d
success_delay_ms = 0
failure_delay_ms = 0

[paths]
state_dir = %q
download_dir = %q

[logging]
level = "error"

[metrics]
textfile = %q
`, cfg.Server.BaseURL, cfg.Conversion.ProgressIntervalMS, cfg.Paths.StateDir, cfg.Paths.DownloadDir, cfg.Metrics.Textfile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) file(t *testing.T, name string, content string) string {
	t.Helper()
	return testsupport.WriteContent(t, e.workDir, name, []byte(content))
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, output, substring string) {
	t.Helper()
	if !strings.Contains(output, substring) {
		t.Fatalf("expected output to contain %q, got:\n%s", substring, output)
	}
}
