package main

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestReportDirs(t *testing.T) {
	a := filepath.Join("scans", "2024-03-01")
	b := filepath.Join("scans", "2024-02-01")
	got := reportDirs([]string{
		filepath.Join(a, "p2.png"),
		filepath.Join(b, "p1.png"),
		filepath.Join(a, "p1.png"),
	})
	want := []string{b, a}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("reportDirs() = %v, want %v", got, want)
	}
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{{"extract"}, {"runs", "list"}, {"runs", "show"}, {"runs", "export"}, {"vocab", "check"}, {"watch"}} {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("Find(%v) = %v, %v", path, cmd, err)
		}
	}
}
