package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/tle-generator/core"
	"github.com/signalsfoundry/tle-generator/internal/config"
	"github.com/signalsfoundry/tle-generator/internal/logging"
	"github.com/signalsfoundry/tle-generator/internal/observability"
	"github.com/signalsfoundry/tle-generator/internal/sink"
)

const fixtureCSV = `ntc_id,plane,sat,mean_anomaly,orb_id,sys_name,a,b,c,d,raan,inc,e,f,g,apo_m,apo_e,peri_m,peri_e,argp
1,0,0,0,7,TestSys,,,,,0,53,,,,5.5,2,5.5,2,0
1,0,1,180,7,TestSys,,,,,0,53,,,,5.5,2,5.5,2,0
1,1,0,-30,7,TestSys,,,,,-90,53,,,,6,2,5.5,2,-45
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "join.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp()
	defer a.close()
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateAndVerifyCommands(t *testing.T) {
	input := writeFixture(t, fixtureCSV)
	outDir := t.TempDir()
	metrics := filepath.Join(t.TempDir(), "tlegen.prom")

	out, err := execute(t, "generate",
		"--input", input,
		"--output-dir", outDir,
		"--epoch", "2021-12-01",
		"--verify",
		"--metrics-textfile", metrics,
		"--log-level", "error")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := filepath.Join(outDir, "TLEs_TestSys.txt")
	if strings.TrimSpace(out) != want {
		t.Fatalf("generate printed %q, want %q", out, want)
	}

	raw, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	if len(lines) != 9 {
		t.Fatalf("got %d lines, want 9", len(lines))
	}
	if lines[6] != "TestSys Plane 1 Sat 0" {
		t.Fatalf("third title = %q", lines[6])
	}
	if got := lines[8][43:51]; got != "330.0000" {
		t.Fatalf("mean anomaly field = %q, want 330.0000", got)
	}
	if got := lines[8][17:25]; got != "270.0000" {
		t.Fatalf("raan field = %q, want 270.0000", got)
	}

	prom, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("read metrics textfile: %v", err)
	}
	if !strings.Contains(string(prom), `tlegen_records_total{kind="none"} 3`) {
		t.Fatalf("metrics textfile missing record count:\n%s", prom)
	}

	out, err = execute(t, "verify", want, "--step", "5m")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !strings.Contains(out, "3 element sets OK (TestSys)") {
		t.Fatalf("verify printed %q", out)
	}
}

func TestGenerateReportsMalformedRow(t *testing.T) {
	// Third row has its apogee below its perigee.
	body := strings.Replace(fixtureCSV, ",6,2,5.5,2,", ",5,2,6,2,", 1)
	cfg, err := config.Load(config.New(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Source.Path = writeFixture(t, body)
	cfg.OutputDir = t.TempDir()

	reg := prometheus.NewRegistry()
	_, err = runGenerate(context.Background(), cfg, logging.Noop(), reg)
	if kind := core.ErrorKind(err); kind != "malformed_row" {
		t.Fatalf("ErrorKind = %q (%v), want malformed_row", kind, err)
	}

	collector, cerr := observability.NewGeneratorCollector(reg)
	if cerr != nil {
		t.Fatalf("NewGeneratorCollector: %v", cerr)
	}
	if got := testutil.ToFloat64(collector.BatchesTotal.WithLabelValues("malformed_row")); got != 1 {
		t.Fatalf("tlegen_batches_total{kind=malformed_row} = %v, want 1", got)
	}
	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 0 {
		t.Fatalf("failed run left files behind: %v", entries)
	}
}

func TestVerifyRejectsCorruptedFile(t *testing.T) {
	input := writeFixture(t, fixtureCSV)
	outDir := t.TempDir()
	if _, err := execute(t, "generate", "--input", input, "--output-dir", outDir, "--log-level", "error"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	path := filepath.Join(outDir, sink.FileName("TestSys"))
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(string(raw), "\n")
	// Flip one digit of the inclination so the checksum no longer matches.
	b := []byte(lines[2])
	b[9] = '6'
	lines[2] = string(b)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("rewrite output: %v", err)
	}

	if _, err := execute(t, "verify", path, "--log-level", "error"); err == nil {
		t.Fatalf("expected verification failure")
	}
}

func TestOpenSourceRequiresLocation(t *testing.T) {
	if _, _, err := openSource(context.Background(), config.SourceConfig{Kind: "csv"}); err == nil {
		t.Fatalf("expected error without csv path")
	}
	if _, _, err := openSource(context.Background(), config.SourceConfig{Kind: "postgres"}); err == nil {
		t.Fatalf("expected error without dsn")
	}
	if _, _, err := openSource(context.Background(), config.SourceConfig{Kind: "oracle"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
