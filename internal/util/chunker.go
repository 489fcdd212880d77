package util

// ChunkText splits text into windows of at most chunkSize runes. Consecutive
// windows share overlap runes. Chunks are not trimmed, so a text that fits in
// one window comes back unchanged.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{}
	}
	if len(runes) <= chunkSize {
		return []string{text}
	}
	step := chunkSize - overlap
	out := make([]string, 0, len(runes)/step+1)
	for i := 0; i < len(runes); i += step {
		end := i + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}
