package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRequiresWatchOrCli(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.blcs")
	if err := os.WriteFile(entry, []byte("##blcs\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{entry})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when neither -w nor -X is given")
	}
}

func TestWatchAndCliAreMutuallyExclusive(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.blcs")
	if err := os.WriteFile(entry, []byte("##blcs\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-w", "-X", entry})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when both -w and -X are given")
	}
}

func TestCliModeWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.blcs")
	if err := os.WriteFile(entry, []byte("##blcs\n##define MAX 9\nreturn #MAX;"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-X", "-q", entry})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outputPath := filepath.Join(dir, "main.cs")
	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
	if !bytes.Contains(data, []byte("9;")) {
		t.Errorf("output missing expansion: %s", data)
	}
}

func TestCliModeDirectoryProcessesAllSources(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.blcs"), []byte("##blcs\n##define X 1\nreturn #X;"), 0o644); err != nil {
		t.Fatalf("write a.blcs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.blcs"), []byte("##blcs\n##define Y 2\nreturn #Y;"), 0o644); err != nil {
		t.Fatalf("write b.blcs: %v", err)
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"-X", "-d", dir})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "a.cs")); err != nil {
		t.Errorf("expected a.cs to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.cs")); err != nil {
		t.Errorf("expected b.cs to exist: %v", err)
	}
}
