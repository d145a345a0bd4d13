package fingerprint

// Code is one fingerprint frame.
type Code = uint32

// CodeBits is the width of a Code.
const CodeBits = 32

var popcount8 = buildPopcountTable()

func buildPopcountTable() [256]uint8 {
	var table [256]uint8
	for i := range table {
		table[i] = table[i/2] + uint8(i&1)
	}
	return table
}

// PopCount returns the number of set bits in c.
func PopCount(c Code) int {
	return int(popcount8[c&0xFF]) +
		int(popcount8[(c>>8)&0xFF]) +
		int(popcount8[(c>>16)&0xFF]) +
		int(popcount8[(c>>24)&0xFF])
}

// BitErrorRate returns the fraction of differing bits between a and b over
// their common prefix. An empty operand has no overlap and scores 1.0.
func BitErrorRate(a, b []Code) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 1.0
	}
	diff := 0
	for i := 0; i < n; i++ {
		diff += PopCount(a[i] ^ b[i])
	}
	return float64(diff) / float64(CodeBits*n)
}
