package cli

import (
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty defaults to png", input: "", want: []string{"png"}},
		{name: "single format", input: "json", want: []string{"json"}},
		{name: "multiple formats", input: "png,dot,svg", want: []string{"png", "dot", "svg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
		want   string
	}{
		{name: "from input", input: "graph.json", output: "", want: "graph"},
		{name: "explicit output", input: "graph.json", output: "out.png", want: "out"},
		{name: "output without extension", input: "graph.json", output: "renders/out", want: "renders/out"},
		{name: "nested input", input: "data/graph.json", output: "", want: "data/graph"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputBase(tt.input, tt.output); got != tt.want {
				t.Errorf("outputBase(%q, %q) = %q, want %q", tt.input, tt.output, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		base   string
		output string
		format string
		single bool
		want   string
	}{
		{name: "single explicit output verbatim", base: "out", output: "custom.png", format: "png", single: true, want: "custom.png"},
		{name: "single without output", base: "graph", output: "", format: "png", single: true, want: "graph.png"},
		{name: "multi ignores explicit output", base: "out", output: "out.png", format: "dot", single: false, want: "out.dot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.base, tt.output, tt.format, tt.single); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
