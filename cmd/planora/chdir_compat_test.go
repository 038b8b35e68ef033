package main

import (
	"os"
	"testing"
)

// chdir is a Go 1.21 stand-in for testing.T.Chdir (added in Go 1.24): it
// changes the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("chdir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			panic("chdir: restore working directory: " + err.Error())
		}
	})
}
