package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// Keyword tables are matched against whole tokens or token sequences, so
// "week" never matches "weekend" and "no" never matches "know".

var recommendPhrases = phrases(
	"recommend", "recommendation", "recommendations", "suggest", "suggestions",
	"where should i go", "where to go", "places to visit", "destinations",
	"travel ideas", "best places", "where can i travel", "travel suggestions",
	"recommend places",
)

var restartPhrases = phrases("start over", "restart", "reset", "cancel")

var sameKeywords = phrases("same", "usual", "normal", "typical", "regular", "yes", "yep", "yeah", "sure", "sounds good", "surprise me")

var differentKeywords = phrases("different", "change", "new", "try", "something else", "no", "nope")

var months = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

var monthAbbrev = map[string]string{
	"jan": "january", "feb": "february", "mar": "march", "apr": "april",
	"jun": "june", "jul": "july", "aug": "august", "sep": "september", "sept": "september",
	"oct": "october", "nov": "november", "dec": "december",
}

var shortDurationWords = map[string]bool{
	"short": true, "weekend": true, "quick": true, "getaway": true,
}

var longDurationWords = map[string]bool{
	"long": true, "week": true, "weeks": true, "proper": true, "fortnight": true, "month": true,
}

var (
	dayCountRe  = regexp.MustCompile(`(\d+)\s*(?:-|to)?\s*(?:\d+\s*)?(?:days?|nights?)\b`)
	weekCountRe = regexp.MustCompile(`(\d+)\s*weeks?\b`)
	tokenRe     = regexp.MustCompile(`[\p{L}][\p{L}'-]*|#?\d+(?:st|nd|rd|th)?`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "fourteen": 14,
}

type phrase []string

func phrases(list ...string) []phrase {
	out := make([]phrase, len(list))
	for i, p := range list {
		out[i] = strings.Fields(p)
	}
	return out
}

// tokens splits an utterance into lower-cased word and number tokens.
func tokens(s string) []string {
	raw := tokenRe.FindAllString(strings.ToLower(s), -1)
	out := raw[:0]
	for _, t := range raw {
		out = append(out, strings.Trim(t, "'-"))
	}
	return out
}

// indexOf returns the token index where p starts, or -1.
func indexOf(toks []string, p phrase) int {
	if len(p) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(p) <= len(toks); i++ {
		for j, w := range p {
			if toks[i+j] != w {
				continue outer
			}
		}
		return i
	}
	return -1
}

func containsAny(toks []string, set []phrase) bool {
	for _, p := range set {
		if indexOf(toks, p) >= 0 {
			return true
		}
	}
	return false
}

// IsRecommendationRequest reports whether the utterance asks for destination ideas.
func IsRecommendationRequest(utterance string) bool {
	return containsAny(tokens(utterance), recommendPhrases)
}

// IsRestart reports whether the user asked to abandon the current flow.
func IsRestart(utterance string) bool {
	return containsAny(tokens(utterance), restartPhrases)
}

// DetectMonth returns the first month named in the utterance, lower-cased.
func DetectMonth(utterance string) string {
	for _, t := range tokens(utterance) {
		if monthIndex(t) >= 0 {
			return months[monthIndex(t)]
		}
	}
	return ""
}

func monthIndex(tok string) int {
	if full, ok := monthAbbrev[tok]; ok {
		tok = full
	}
	for i, m := range months {
		if tok == m {
			return i
		}
	}
	return -1
}

// ClassifyDuration maps an utterance onto the short or long trip bucket.
// Explicit day or week counts win over keywords.
func ClassifyDuration(utterance string) types.DurationBucket {
	if d := extractDays(utterance); d > 0 {
		return bucketForDays(d)
	}
	toks := tokens(utterance)
	short, long := false, false
	for i, t := range toks {
		// "next week" is a date, not a length
		if i > 0 && (toks[i-1] == "next" || toks[i-1] == "this" || toks[i-1] == "last") {
			continue
		}
		if shortDurationWords[t] {
			short = true
		}
		if longDurationWords[t] {
			long = true
		}
	}
	switch {
	case short && !long:
		return types.DurationShort
	case long && !short:
		return types.DurationLong
	case short && long:
		// "a long weekend" is still a weekend
		if containsAny(toks, phrases("weekend")) {
			return types.DurationShort
		}
		return types.DurationLong
	}

	// a bare number answers "how long"
	if len(toks) <= 2 {
		for _, t := range toks {
			if n, err := strconv.Atoi(t); err == nil && n > 0 {
				return bucketForDays(n)
			}
		}
	}
	return types.DurationUnknown
}

func bucketForDays(days int) types.DurationBucket {
	if days >= 5 {
		return types.DurationLong
	}
	return types.DurationShort
}

// extractDays reads an explicit trip length in days, or 0 when none is stated.
func extractDays(utterance string) int {
	lower := strings.ToLower(utterance)
	if m := dayCountRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		if hi := rangeUpper(m[0]); hi > n {
			n = hi
		}
		return n
	}
	if m := weekCountRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n * 7
	}

	toks := tokens(lower)
	for i, t := range toks {
		n, ok := numberWords[t]
		if !ok && (t == "a" || t == "an") {
			n, ok = 1, true
		}
		if !ok || i+1 >= len(toks) {
			continue
		}
		switch toks[i+1] {
		case "day", "days", "night", "nights":
			return n
		case "week", "weeks":
			return n * 7
		}
	}
	for _, t := range toks {
		switch t {
		case "weekend":
			return 2
		case "fortnight":
			return 14
		}
	}
	return 0
}

// rangeUpper returns the second number of a "3-5 days" style match.
func rangeUpper(match string) int {
	nums := regexp.MustCompile(`\d+`).FindAllString(match, -1)
	if len(nums) < 2 {
		return 0
	}
	n, _ := strconv.Atoi(nums[1])
	return n
}

// titleCase upper-cases the first letter of every word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
