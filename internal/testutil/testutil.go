// SPDX-License-Identifier: MPL-2.0

// Package testutil provides fixture helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DescriptorFile is the recipe descriptor file name.
const DescriptorFile = "recipe.yml"

// WriteRecipe creates root/name/recipe.yml declaring deps and returns the
// recipe directory. A name containing slashes creates nested directories.
func WriteRecipe(t testing.TB, root, name string, deps ...string) string {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(name))
	MustMkdirAll(t, dir, 0o755)

	var b strings.Builder
	b.WriteString("name: " + filepath.Base(dir) + "\n")
	b.WriteString("type: Site\n")
	if len(deps) > 0 {
		b.WriteString("recipes:\n")
		for _, d := range deps {
			b.WriteString("  - " + d + "\n")
		}
	}
	MustWriteFile(t, filepath.Join(dir, DescriptorFile), b.String())
	return dir
}

// WriteConfig writes content to dir/drupal-recipe-manager.yaml and returns its path.
func WriteConfig(t testing.TB, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "drupal-recipe-manager.yaml")
	MustWriteFile(t, path, content)
	return path
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// MustMkdirAll creates a directory along with any necessary parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustChdir changes the working directory to dir and restores it on cleanup.
// Tests using it must not call t.Parallel().
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", wd, err)
		}
	})
}

// MustReadFile returns the content of path, failing the test on error.
func MustReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}
