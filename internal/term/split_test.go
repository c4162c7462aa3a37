package term

import "testing"

func TestIncompleteTail(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int
	}{
		{"plain text", "hello", -1},
		{"complete sgr", "ok \x1b[32m", -1},
		{"split csi params", "ok \x1b[3", 3},
		{"bare escape", "ok \x1b", 3},
		{"csi opener only", "ok \x1b[", 3},
		{"unterminated osc", "x\x1b]0;title", 1},
		{"osc bel terminated", "x\x1b]0;title\x07", -1},
		{"osc st terminated", "x\x1b]0;title\x1b\\", -1},
		{"two char escape", "x\x1b7", -1},
		{"complete then split", "\x1b[1mbold\x1b[", 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IncompleteTail(tc.input); got != tc.want {
				t.Errorf("IncompleteTail(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}
