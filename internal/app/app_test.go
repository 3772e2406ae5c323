package app

import (
	"testing"

	"github.com/dmaas/techwiki/internal/config"
)

func TestQualifiedModelName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gemini-2.5-flash", "googleai/gemini-2.5-flash"},
		{"googleai/gemini-2.5-pro", "googleai/gemini-2.5-pro"},
		{"mock/test-model", "mock/test-model"},
	}
	for _, tt := range tests {
		got := qualifiedModelName(&config.Config{ModelName: tt.model})
		if got != tt.want {
			t.Errorf("qualifiedModelName(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	a := &App{}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
