package synth

import "strings"

// sentinels are control tokens chat models leak into decoded text.
var sentinels = []string{
	"<|endoftext|>",
	"</s>",
	"<|eot_id|>",
	"<|start_header_id|>",
	"<|end_header_id|>",
	"</think>",
}

var sentinelReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, len(sentinels)*2)
	for _, s := range sentinels {
		pairs = append(pairs, s, "")
	}
	return strings.NewReplacer(pairs...)
}()

const roleHeader = "assistant"

// Clean strips sentinel tokens and a leading role header from raw model
// output. It runs to a fixed point, so Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	out := raw
	for {
		next := strings.TrimSpace(sentinelReplacer.Replace(out))
		next = stripRoleHeader(next)
		if next == out {
			return out
		}
		out = next
	}
}

func stripRoleHeader(s string) string {
	first, rest, found := strings.Cut(s, "\n")
	if found && strings.TrimSpace(first) == roleHeader {
		return strings.TrimSpace(rest)
	}

	return s
}
