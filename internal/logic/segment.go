package logic

// DigitOff selects the all-unlit segment pattern.
const DigitOff = 10

// segmentTable holds the lit/unlit pattern of each 14-pixel digit cell,
// one row per digit 0-9 followed by the blank row.
var segmentTable = [11][14]uint8{
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0}, // 0
	{0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0}, // 1
	{1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1}, // 2
	{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1}, // 3
	{0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 1, 1, 1, 1}, // 4
	{1, 1, 0, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1}, // 5
	{1, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, // 6
	{1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0}, // 7
	{1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1}, // 8
	{1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1}, // 9
	{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, // off
}

// Segments returns the 14-element pattern for digit d (0-9) or DigitOff.
// Callers must not pass any other value.
func Segments(d int) [14]bool {
	var out [14]bool
	for i, v := range segmentTable[d] {
		out[i] = v == 1
	}
	return out
}
