package transcript

import (
	"regexp"
	"strings"
)

// Utterance is a single speaker turn extracted from a raw transcript.
type Utterance struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
}

// Field interview transcripts look like:
//
//	[00:00:03 - 00:00:17] Interviewer : So tell me about the farm...
//	[00:00:18 - 00:01:02] Maria : We started in 2019 when...
//
// A segment runs from its timestamp bracket to the next one (or end of
// input). Stretches of text that do not start with a well-formed timestamp
// pair and speaker label are dropped, never emitted as partial utterances.
var segmentRe = regexp.MustCompile(
	`\[(\d{2}:\d{2}:\d{2}) - (\d{2}:\d{2}:\d{2})\]\s*([^:\[\]]+?)\s*:`)

// Parse extracts utterances from raw transcript text in source order.
// It is a pure function and safe for concurrent use. Empty input or input
// without any recognizable timestamp yields an empty slice, not an error.
func Parse(raw string) []Utterance {
	matches := segmentRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return []Utterance{}
	}

	utterances := make([]Utterance, 0, len(matches))
	for i, m := range matches {
		textStart := m[1] // end of the full header match
		textEnd := len(raw)
		if i+1 < len(matches) {
			textEnd = matches[i+1][0]
		}

		utterances = append(utterances, Utterance{
			StartTime: raw[m[2]:m[3]],
			EndTime:   raw[m[4]:m[5]],
			Speaker:   strings.TrimSpace(raw[m[6]:m[7]]),
			Text:      strings.TrimSpace(raw[textStart:textEnd]),
		})
	}

	return utterances
}

// UniqueSpeakers returns distinct speaker labels in first-appearance order.
// The stable ordering is what the UI keys its legend colors on.
func UniqueSpeakers(utterances []Utterance) []string {
	seen := make(map[string]bool, len(utterances))
	speakers := make([]string, 0, 4)
	for _, u := range utterances {
		if !seen[u.Speaker] {
			seen[u.Speaker] = true
			speakers = append(speakers, u.Speaker)
		}
	}
	return speakers
}
