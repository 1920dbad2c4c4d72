package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"studyguide.parallel/imgbench/pkg/imagetest"
	"studyguide.parallel/imgbench/pkg/runner"
)

func sequentialStrategy() Strategy {
	return Strategy{
		Use:           "sequential",
		DefaultOutput: "output_seq",
		Run:           (*runner.Runner).Sequential,
	}
}

func execute(t *testing.T, s Strategy, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCommand(s)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCommand_RunsWithFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	imagetest.WriteDataset(t, in, 3, 8, 8)
	out := filepath.Join(dir, "out")

	stdout, stderr, err := execute(t, sequentialStrategy(), "--input", in, "--output", out, "--size", "16")
	if err != nil {
		t.Fatalf("execute: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Sequential Processing Time:") {
		t.Errorf("missing summary in stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "found images") {
		t.Errorf("expected structured logs on stderr:\n%s", stderr)
	}
	if n := imagetest.CountFiles(t, out); n != 3 {
		t.Errorf("expected 3 outputs, got %d", n)
	}
}

func TestCommand_EnvOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	imagetest.WriteDataset(t, in, 2, 8, 8)
	out := filepath.Join(dir, "env_out")
	t.Setenv("IMGBENCH_INPUT", in)
	t.Setenv("IMGBENCH_OUTPUT", out)
	t.Setenv("IMGBENCH_LOG_LEVEL", "error")

	_, stderr, err := execute(t, sequentialStrategy())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(stderr, "found images") {
		t.Errorf("info logs should be suppressed at error level:\n%s", stderr)
	}
	if n := imagetest.CountFiles(t, out); n != 2 {
		t.Errorf("expected 2 outputs, got %d", n)
	}
}

func TestCommand_InvalidConfig(t *testing.T) {
	_, stderr, err := execute(t, sequentialStrategy(), "--input", t.TempDir(), "--kernel", "4")
	if err == nil {
		t.Fatal("expected an error for an even kernel size")
	}
	if !strings.Contains(stderr, "invalid kernel 4") {
		t.Errorf("expected the error on stderr, got:\n%s", stderr)
	}
}

func TestCommand_RejectsArgs(t *testing.T) {
	if _, _, err := execute(t, sequentialStrategy(), "extra"); err == nil {
		t.Fatal("expected positional arguments to be rejected")
	}
}

func TestCommand_MissingInputFails(t *testing.T) {
	_, _, err := execute(t, sequentialStrategy(), "--input", filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected an error for a missing input directory")
	}
}
