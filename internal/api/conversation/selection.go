package conversation

import (
	"strconv"
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

var selectionPhrases = phrases(
	"tell me about", "more about", "details about", "interested in", "pick", "choose",
	"select", "go with", "itinerary for", "plan for", "create itinerary", "detailed plan",
)

var selectionFillers = map[string]bool{
	"the": true, "a": true, "an": true, "please": true, "for": true, "me": true, "one": true, "option": true,
}

// words of the selection phrases, ignored around a plain number
var selectionWords = func() map[string]bool {
	out := map[string]bool{}
	for _, p := range selectionPhrases {
		for _, w := range p {
			out[w] = true
		}
	}
	return out
}()

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

// ResolveSelection finds the destination the user refers to in the last shown
// list. The second return value is false when nothing matches.
func ResolveSelection(utterance string, shown []types.ScoredDestination) (types.ScoredDestination, bool) {
	if len(shown) == 0 {
		return types.ScoredDestination{}, false
	}
	toks := tokens(utterance)

	// longest city name first so "San Jose" beats "San"
	best := -1
	for i, sd := range shown {
		city := phrase(tokens(sd.Destination.City))
		if indexOf(toks, city) >= 0 && (best < 0 || len(city) > len(tokens(shown[best].Destination.City))) {
			best = i
		}
	}
	if best >= 0 {
		return shown[best], true
	}

	if n, ok := ordinalIn(toks, len(shown)); ok {
		return shown[n-1], true
	}

	var remainder []string
	for _, p := range selectionPhrases {
		if i := indexOf(toks, p); i >= 0 {
			remainder = toks[i+len(p):]
			break
		}
	}
	if remainder == nil {
		// a short bare reply may be a city name, but not a yes/no or a hedge
		if len(toks) > 3 || containsAny(toks, sameKeywords) || containsAny(toks, differentKeywords) || anyIn(toks, negators) {
			return types.ScoredDestination{}, false
		}
		remainder = toks
	}
	var words []string
	for _, t := range remainder {
		if !selectionFillers[t] {
			words = append(words, t)
		}
	}
	prefix := strings.Join(words, " ")
	if len([]rune(prefix)) < minCityPrefix {
		return types.ScoredDestination{}, false
	}
	match := -1
	for i, sd := range shown {
		if strings.HasPrefix(strings.ToLower(sd.Destination.City), prefix) {
			if match >= 0 {
				return types.ScoredDestination{}, false
			}
			match = i
		}
	}
	if match < 0 {
		return types.ScoredDestination{}, false
	}
	return shown[match], true
}

const minCityPrefix = 3

// ordinalIn returns a 1-based position named by "first", "last", "#3" or
// "4th". A plain number only counts when nothing but filler surrounds it,
// so "2" and "option 2" resolve but "something for 3 people" does not.
func ordinalIn(toks []string, size int) (int, bool) {
	plain := 0
	others := 0
	for _, t := range toks {
		if t == "last" {
			return size, true
		}
		if n, ok := ordinalWords[t]; ok {
			return inRange(n, size)
		}
		if n, ok := markedOrdinal(t); ok {
			return inRange(n, size)
		}
		if n, err := strconv.Atoi(t); err == nil {
			plain = n
			continue
		}
		if !selectionFillers[t] && !selectionWords[t] {
			others++
		}
	}
	if plain > 0 && others == 0 {
		return inRange(plain, size)
	}
	return 0, false
}

func markedOrdinal(t string) (int, bool) {
	switch {
	case strings.HasPrefix(t, "#"):
		t = t[1:]
	case len(t) > 2 && strings.ContainsAny(t[:1], "0123456789"):
		suffix := t[len(t)-2:]
		if suffix != "st" && suffix != "nd" && suffix != "rd" && suffix != "th" {
			return 0, false
		}
		t = t[:len(t)-2]
	default:
		return 0, false
	}
	n, err := strconv.Atoi(t)
	return n, err == nil
}

func inRange(n, size int) (int, bool) {
	if n >= 1 && n <= size {
		return n, true
	}
	return 0, false
}

func anyIn(toks []string, set map[string]bool) bool {
	for _, t := range toks {
		if set[t] {
			return true
		}
	}
	return false
}
