package main

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/debemdeboas/mdwidget/internal/config"
)

func TestGeneratedConstantsUpToDate(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	got, err := generateConstants(cfg)
	if err != nil {
		t.Fatal(err)
	}
	want, err := os.ReadFile("../../" + constantsFile)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("%s is stale, run 'go run ./cmd/generate-config -constants' (-file +generated):\n%s", constantsFile, diff)
	}
}

func TestGenerateExample(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	out, err := generateExample(cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# mdwidget configuration example", "driver: sqlite", "engine: mmark", "format: console"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Expected example to contain %q", want)
		}
	}
}

func TestWriteStdout(t *testing.T) {
	var sb strings.Builder
	if err := write("-", []byte("x: 1\n"), &sb); err != nil {
		t.Fatal(err)
	}
	if sb.String() != "x: 1\n" {
		t.Errorf("Unexpected stdout %q", sb.String())
	}
}
