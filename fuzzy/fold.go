package fuzzy

// asciiFold rewrites a normalized term into a one-byte-per-letter string
// so byte-level edit distance counts letters, not UTF-8 bytes. Hebrew
// letters map onto 0xC0..0xDA, clear of the ASCII letters and digits
// that Latin terms keep as-is. Anything else (none is expected from the
// normalizer) collapses to a single substitute byte.
func asciiFold(term string) string {
	out := make([]byte, 0, len(term))
	for _, r := range term {
		switch {
		case r >= 'א' && r <= 'ת':
			out = append(out, byte(0xC0+r-'א'))
		case r < 0x80:
			out = append(out, byte(r))
		default:
			out = append(out, 0x1A)
		}
	}
	return string(out)
}
