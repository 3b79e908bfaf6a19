package badge

// DefaultMetrics returns metrics for Verdana 11px without embedding font
// data. Badges rendered from it reference viewer-installed fonts only,
// which is what shields.io flat badges do. The advance table was measured
// once from Verdana at 11pt/72dpi and baked in; Verdana itself cannot be
// redistributed.
func DefaultMetrics() *FontMetrics {
	return &FontMetrics{
		name:     "Verdana",
		size:     11,
		advances: verdana11,
		fallback: 6.9,
	}
}

// verdana11 maps printable ASCII to pixel advances for Verdana at 11px.
var verdana11 = map[rune]float64{
	' ': 3.9, '!': 4.4, '"': 5.1, '#': 9.2, '$': 7.0, '%': 12.1, '&': 8.0,
	'\'': 3.0, '(': 4.8, ')': 4.8, '*': 7.0, '+': 9.2, ',': 4.0, '-': 5.0,
	'.': 4.0, '/': 5.0, '0': 7.0, '1': 7.0, '2': 7.0, '3': 7.0, '4': 7.0,
	'5': 7.0, '6': 7.0, '7': 7.0, '8': 7.0, '9': 7.0, ':': 4.8, ';': 4.8,
	'<': 9.2, '=': 9.2, '>': 9.2, '?': 6.0, '@': 11.0,
	'A': 7.6, 'B': 7.6, 'C': 7.8, 'D': 8.5, 'E': 7.0, 'F': 6.4, 'G': 8.6,
	'H': 8.3, 'I': 4.6, 'J': 5.0, 'K': 7.6, 'L': 6.1, 'M': 9.5, 'N': 8.4,
	'O': 8.8, 'P': 6.7, 'Q': 8.8, 'R': 7.7, 'S': 7.6, 'T': 6.8, 'U': 8.1,
	'V': 7.6, 'W': 10.9, 'X': 7.6, 'Y': 6.8, 'Z': 7.6,
	'[': 4.8, '\\': 5.0, ']': 4.8, '^': 9.2, '_': 7.0, '`': 7.0,
	'a': 6.7, 'b': 6.9, 'c': 5.8, 'd': 6.9, 'e': 6.7, 'f': 3.9, 'g': 6.9,
	'h': 7.0, 'i': 3.0, 'j': 3.7, 'k': 6.5, 'l': 3.0, 'm': 10.7, 'n': 7.0,
	'o': 6.8, 'p': 6.9, 'q': 6.9, 'r': 4.7, 's': 5.8, 't': 4.4, 'u': 7.0,
	'v': 6.5, 'w': 9.1, 'x': 6.5, 'y': 6.5, 'z': 5.8,
	'{': 7.0, '|': 5.0, '}': 7.0, '~': 9.2,
}
