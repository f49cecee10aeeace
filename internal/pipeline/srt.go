package pipeline

import (
	"fmt"
	"math"
	"strings"
)

// wordsPerCue bounds subtitle cue length so burned-in captions stay readable
// on a phone screen.
const wordsPerCue = 3

// BuildSRT renders a caption set as SubRip text. The output is a pure
// function of the word list: the same words always produce byte-identical
// SRT, which keeps caption burn-in reproducible. An empty word list yields
// an empty document.
func BuildSRT(words []CaptionWord) string {
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	cue := 1
	for start := 0; start < len(words); start += wordsPerCue {
		end := start + wordsPerCue
		if end > len(words) {
			end = len(words)
		}
		group := words[start:end]

		texts := make([]string, 0, len(group))
		for _, word := range group {
			if word.Word != "" {
				texts = append(texts, word.Word)
			}
		}
		if len(texts) == 0 {
			continue
		}

		fmt.Fprintf(&b, "%d\n", cue)
		fmt.Fprintf(&b, "%s --> %s\n", srtTimestamp(group[0].Start), srtTimestamp(group[len(group)-1].End))
		fmt.Fprintf(&b, "%s\n\n", strings.Join(texts, " "))
		cue++
	}
	return b.String()
}

// srtTimestamp formats seconds as the SubRip HH:MM:SS,mmm form.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
