package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"studyguide.parallel/imgbench/pkg/imagetest"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"a.PNG", true},
		{"b.jpg", true},
		{"b.JPEG", true},
		{"c.bmp", true},
		{"notes.txt", false},
		{"png", false},
		{"archive.png.gz", false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.name); got != tt.want {
			t.Errorf("IsImage(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestScan_RecursiveAndOrdered(t *testing.T) {
	in := t.TempDir()
	img := imagetest.Gradient(4, 4, 0)
	imagetest.WritePNG(t, filepath.Join(in, "cats", "b.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "cats", "a.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "dogs", "z.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "top.png"), img)
	if err := os.WriteFile(filepath.Join(in, "README.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	jobs, err := Scan(in, "out")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	wantRel := []string{
		filepath.Join("cats", "a.png"),
		filepath.Join("cats", "b.png"),
		filepath.Join("dogs", "z.png"),
		"top.png",
	}
	if len(jobs) != len(wantRel) {
		t.Fatalf("expected %d jobs, got %d", len(wantRel), len(jobs))
	}
	for i, job := range jobs {
		if job.Index != i {
			t.Errorf("job %d has index %d", i, job.Index)
		}
		if job.RelPath != wantRel[i] {
			t.Errorf("job %d rel path = %s, want %s", i, job.RelPath, wantRel[i])
		}
		if want := filepath.Join("out", wantRel[i]); job.OutputPath != want {
			t.Errorf("job %d output = %s, want %s", i, job.OutputPath, want)
		}
	}
}

func TestScan_SkipsNestedOutput(t *testing.T) {
	in := t.TempDir()
	img := imagetest.Gradient(4, 4, 0)
	imagetest.WritePNG(t, filepath.Join(in, "a.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "out", "a.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "out", "node1", "b.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "prev", "c.png"), img)
	imagetest.WritePNG(t, filepath.Join(in, "outside", "d.png"), img)

	jobs, err := Scan(in, filepath.Join(in, "out"), filepath.Join(in, "prev"))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"a.png", filepath.Join("outside", "d.png")}
	if len(jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d: %+v", len(want), len(jobs), jobs)
	}
	for i, job := range jobs {
		if job.RelPath != want[i] {
			t.Errorf("job %d rel path = %s, want %s", i, job.RelPath, want[i])
		}
	}
}

func TestScan_Empty(t *testing.T) {
	_, err := Scan(t.TempDir(), "out")
	if !errors.Is(err, ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "missing"), "out")
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestRetarget(t *testing.T) {
	jobs := []Job{
		{Index: 0, RelPath: "a.png", OutputPath: "x/a.png"},
		{Index: 1, RelPath: filepath.Join("sub", "b.png"), OutputPath: "x/sub/b.png"},
	}
	got := Retarget(jobs, "node1")
	if got[1].OutputPath != filepath.Join("node1", "sub", "b.png") {
		t.Errorf("unexpected output path %s", got[1].OutputPath)
	}
	if jobs[0].OutputPath != "x/a.png" {
		t.Error("Retarget mutated its input")
	}
}
