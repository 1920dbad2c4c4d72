package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoImages = errors.New("no images found")

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// IsImage reports whether name has one of the recognized image extensions.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// Scan walks inputDir recursively and returns one job per image, in
// lexical path order. Each output path mirrors the input's location
// relative to inputDir under outputDir. The outputDir tree and any skip
// directories are not descended into, so earlier results nested inside
// the input are never picked up as inputs.
func Scan(inputDir, outputDir string, skip ...string) ([]Job, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", inputDir)
	}

	excluded := make(map[string]bool)
	for _, dir := range append([]string{outputDir}, skip...) {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
		}
		excluded[abs] = true
	}

	var jobs []Job
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == inputDir {
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}
			if excluded[abs] {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, Job{
			Index:      len(jobs),
			InputPath:  path,
			RelPath:    rel,
			OutputPath: filepath.Join(outputDir, rel),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", inputDir, err)
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, inputDir)
	}
	return jobs, nil
}
