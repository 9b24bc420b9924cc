package names

import "strings"

// Confusion is an ordered OCR misread: From is what the recognizer produced,
// To is what the glyphs probably were.
type Confusion struct {
	From, To string
}

// Confusions is the substitution table tried, in order, when direct matching
// fails. It is calibration data tuned against captured name plates.
var Confusions = []Confusion{
	{"0", "O"}, {"O", "0"},
	{"1", "I"}, {"1", "L"}, {"I", "L"}, {"L", "I"},
	{"5", "S"}, {"8", "B"}, {"2", "Z"}, {"6", "G"},
	{"RN", "M"}, {"M", "RN"},
	{"CL", "D"}, {"D", "CL"},
	{"VV", "W"}, {"W", "VV"},
	{"|", "I"},
}

// confusionCandidates expands upper-cased text into substitution candidates:
// for each table pair a replace-all variant followed by one variant per single
// occurrence. Duplicates and the input itself are skipped; at most limit
// candidates are returned.
func confusionCandidates(text string, limit int) []string {
	seen := map[string]bool{text: true}
	var out []string
	add := func(s string) bool {
		if seen[s] {
			return true
		}
		seen[s] = true
		out = append(out, s)
		return len(out) < limit
	}
	for _, c := range Confusions {
		if !strings.Contains(text, c.From) {
			continue
		}
		if !add(strings.ReplaceAll(text, c.From, c.To)) {
			return out
		}
		for i := 0; ; {
			j := strings.Index(text[i:], c.From)
			if j < 0 {
				break
			}
			at := i + j
			if !add(text[:at] + c.To + text[at+len(c.From):]) {
				return out
			}
			i = at + len(c.From)
		}
	}
	return out
}
