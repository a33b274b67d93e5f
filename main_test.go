package main

import (
	"io"
	"testing"
)

func TestValidateResolutionOverride_BothSet(t *testing.T) {
	w, h, ok := validateResolutionOverride(800, 600)
	if !ok {
		t.Fatal("expected override to be accepted")
	}
	if w != 800 || h != 600 {
		t.Fatalf("expected (800,600), got (%d,%d)", w, h)
	}
}

func TestValidateResolutionOverride_NeitherSet(t *testing.T) {
	w, h, ok := validateResolutionOverride(0, 0)
	if ok {
		t.Fatal("expected override to be disabled")
	}
	if w != 0 || h != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", w, h)
	}
}

func TestValidateResolutionOverride_OnlyWidth(t *testing.T) {
	w, h, ok := validateResolutionOverride(800, 0)
	if ok {
		t.Fatal("expected partial override to be rejected")
	}
	if w != 0 || h != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", w, h)
	}
}

func TestValidateResolutionOverride_OnlyHeight(t *testing.T) {
	w, h, ok := validateResolutionOverride(0, 600)
	if ok {
		t.Fatal("expected partial override to be rejected")
	}
	if w != 0 || h != 0 {
		t.Fatalf("expected (0,0), got (%d,%d)", w, h)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}
	if cfg.Width != 800 || cfg.Height != 600 {
		t.Fatalf("expected 800x600, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Columns != 1 || cfg.Format != FormatXRGB8888 {
		t.Fatalf("expected 1 column XRGB8888, got %d columns %v", cfg.Columns, cfg.Format)
	}
	if cfg.MaxStoreBytes() != defaultBudget {
		t.Fatalf("expected budget %d, got %d", defaultBudget, cfg.MaxStoreBytes())
	}
}

func TestParseConfig_Flags(t *testing.T) {
	cfg, err := parseConfig([]string{"-width", "1024", "-height", "768", "-columns", "3", "-format", "rgb565_be", "-atomic", "-budget-mb", "2"}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 768 || cfg.Columns != 3 {
		t.Fatalf("expected 1024x768 with 3 columns, got %dx%d with %d", cfg.Width, cfg.Height, cfg.Columns)
	}
	if cfg.Format != FormatRGB565|FormatBigEndian {
		t.Fatalf("expected RGB565_BE, got %v", cfg.Format)
	}
	if !cfg.Atomic || cfg.MaxStoreBytes() != 2<<20 {
		t.Fatalf("expected atomic with 2 MiB budget, got %v %d", cfg.Atomic, cfg.MaxStoreBytes())
	}
}

func TestParseConfig_IPCFlags(t *testing.T) {
	cfg, err := parseConfig([]string{"-listen", "-send", "hello", "-features"}, io.Discard)
	if err != nil {
		t.Fatalf("parseConfig returned error: %v", err)
	}
	if !cfg.Listen || cfg.Send != "hello" || !cfg.Features {
		t.Fatalf("expected listen, send and features set, got %v %q %v", cfg.Listen, cfg.Send, cfg.Features)
	}
}

func TestParseConfig_Rejects(t *testing.T) {
	cases := [][]string{
		{"-width", "640"},
		{"-columns", "0"},
		{"-format", "YUYV"},
		{"-budget-mb", "0"},
		{"-font", "topaz.raw", "-font-width", "0"},
		{"-headless-frames", "-1"},
		{"-bogus"},
	}
	for _, args := range cases {
		if _, err := parseConfig(args, io.Discard); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
