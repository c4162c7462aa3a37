package term

import "strings"

// IncompleteTail reports the byte index where an unterminated trailing
// escape sequence begins in s, or -1 when s ends cleanly. Stream
// adapters use this to hold back a partial sequence until the next
// write, so a sequence split across two writes is never interpreted as
// two broken halves.
func IncompleteTail(s string) int {
	i := strings.LastIndexByte(s, 0x1b)
	if i < 0 {
		return -1
	}
	if sequenceComplete(s[i:]) {
		return -1
	}
	return i
}

// sequenceComplete reports whether seq, which starts with ESC, is a
// fully terminated sequence. CSI terminates on a final byte in
// 0x40..0x7e; the string sequences (OSC, DCS, SOS, PM, APC) terminate
// on BEL or ST (ESC backslash); every other escape is two bytes.
func sequenceComplete(seq string) bool {
	if len(seq) < 2 {
		return false
	}
	switch seq[1] {
	case '[':
		for i := 2; i < len(seq); i++ {
			if seq[i] >= 0x40 && seq[i] <= 0x7e {
				return true
			}
		}
		return false
	case ']', 'P', 'X', '^', '_':
		if strings.IndexByte(seq, 0x07) >= 0 {
			return true
		}
		return strings.Contains(seq, "\x1b\\")
	}
	return true
}
