package ingest

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/services"
)

var (
	vttTimingPattern = regexp.MustCompile(`\d{1,2}:\d{2}(:\d{2})?\.\d{3}\s+-->\s+\d{1,2}:\d{2}(:\d{2})?\.\d{3}`)
	vttVoiceOpen     = regexp.MustCompile(`^<v\s+([^>]+)>`)
	vttVoicePattern  = regexp.MustCompile(`</?v[^>]*>`)
	vttTagPattern    = regexp.MustCompile(`</?(b|i|u|c|ruby|rt|lang)[^>]*>`)
)

// ExtractText converts an uploaded transcript file into plain text. WebVTT
// captions are reduced to their cue text with speaker names preserved; .txt
// files pass through trimmed.
func ExtractText(filename, raw string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".vtt":
		return extractVTT(raw), nil
	case ".txt", "":
		return strings.TrimSpace(raw), nil
	default:
		return "", services.Wrap(services.ErrValidation, "ingest", "extract",
			"unsupported transcript format "+filepath.Ext(filename), nil)
	}
}

func extractVTT(raw string) string {
	var lines []string
	inNote := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			inNote = false
			continue
		case strings.HasPrefix(trimmed, "WEBVTT"):
			continue
		case strings.HasPrefix(trimmed, "NOTE"), strings.HasPrefix(trimmed, "STYLE"), strings.HasPrefix(trimmed, "REGION"):
			inNote = true
			continue
		case inNote:
			continue
		case vttTimingPattern.MatchString(trimmed):
			continue
		case isCueIdentifier(trimmed):
			continue
		}

		text := trimmed
		// <v Speaker> becomes "Speaker: " so attribution survives extraction.
		if match := vttVoiceOpen.FindStringSubmatch(text); match != nil {
			text = match[1] + ": " + text[len(match[0]):]
		}
		text = vttVoicePattern.ReplaceAllString(text, "")
		text = vttTagPattern.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// Cue identifiers are the optional line before the timing line. Numeric
// sequence numbers are the common case; treat bare integers as identifiers.
func isCueIdentifier(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
