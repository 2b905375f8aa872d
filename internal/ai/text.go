package ai

import "strings"

// MaxDiscord is Discord's hard message length limit.
const MaxDiscord = 2000

const truncationSuffix = "\n… (résumé tronqué)"

// FitForDiscord trims s to fit under Discord's message limit, cutting at a
// newline near the target when possible and appending a truncation marker.
func FitForDiscord(s string) string {
	return fitForDiscord(s, MaxDiscord, 1900)
}

func fitForDiscord(s string, hardLimit, target int) string {
	if len(s) <= hardLimit {
		return s
	}

	cut := s[:target]
	if nl := strings.LastIndex(cut, "\n"); nl != -1 && nl >= target-300 {
		cut = cut[:nl]
	}

	cut = strings.TrimRight(cut, " \t\n")
	if len(cut)+len(truncationSuffix) > hardLimit {
		cut = cut[:hardLimit-len(truncationSuffix)]
	}
	return cut + truncationSuffix
}

// ChunkText splits text into chunks of at most size bytes, leaving margin
// under the 2000-character limit for the caller.
func ChunkText(s string, size int) []string {
	if s == "" {
		return []string{""}
	}

	var chunks []string
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[i:end])
	}
	return chunks
}
