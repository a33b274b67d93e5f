package main

import "testing"

func TestCompiledFeatures_RegisterBackends(t *testing.T) {
	video, terminal := false, false
	for _, f := range compiledFeatures {
		switch f {
		case "video:headless", "video:ebiten":
			video = true
		case "terminal:raw", "terminal:windows":
			terminal = true
		}
	}
	if !video || !terminal {
		t.Fatalf("expected a video and a terminal feature, got %v", compiledFeatures)
	}
}
