package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "page %d", args: []any{3}, want: "  page 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tw := NewTreeWriter()
	tw.TextBlock(1, "text", "say \"hi\"")
	tw.TextBlock(0, "empty", "")

	want := "  text: \"say \\\"hi\\\"\"\nempty: \n"
	if got := tw.String(); got != want {
		t.Errorf("TextBlock() = %q, want %q", got, want)
	}
}

func TestTreeWriter_Fields(t *testing.T) {
	tests := []struct {
		name string
		kv   []any
		want string
	}{
		{name: "none", want: "frag\n"},
		{name: "pairs", kv: []any{"size", 12, "cont", true}, want: "frag size=12 cont=true\n"},
		{name: "odd count drops tail", kv: []any{"size", 12, "dangling"}, want: "frag size=12\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Fields(0, "frag", tt.kv...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Fields() = %q, want %q", got, tt.want)
			}
		})
	}
}
