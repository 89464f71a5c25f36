package conversation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// TripInfo is what a single utterance says about the trip. Absent fields are zero.
type TripInfo struct {
	Destination string
	Duration    *types.TripDuration
	Dates       string
}

var destinationLeadIns = phrases("go to", "visit", "travel to", "trip to", "fly to", "itinerary for")

// tokens that end a destination candidate
var destinationStopwords = map[string]bool{
	"in": true, "for": true, "on": true, "at": true, "during": true, "next": true, "this": true,
	"and": true, "with": true, "from": true, "the": true, "a": true, "an": true, "to": true,
	"around": true, "over": true, "by": true, "please": true, "sometime": true, "soon": true,
	"me": true, "my": true, "our": true, "some": true, "somewhere": true, "it": true, "there": true,
	"days": true, "day": true, "week": true, "weeks": true, "weekend": true, "trip": true,
}

var (
	isoDateRe      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:\s*(?:to|until|-|–)\s*\d{4}-\d{2}-\d{2})?\b`)
	monthDayRe     = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:\s*(?:-|–|to|until)\s*(\d{1,2})(?:st|nd|rd|th)?)?\b`)
	dayMonthRe     = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\b`)
	relativeDateRe = regexp.MustCompile(`(?i)\b(next|this)\s+(week|weekend|month|summer|winter|spring|autumn|fall|year)\b|\b(tomorrow|christmas|easter|new year)\b`)
)

// ExtractTripInfo pulls a destination, a duration and dates out of free text.
// Nothing detected is not an error.
func ExtractTripInfo(utterance string) TripInfo {
	var info TripInfo
	info.Destination = extractDestination(utterance)
	if days := extractDays(utterance); days > 0 {
		info.Duration = &types.TripDuration{Days: days, Bucket: bucketForDays(days)}
	} else if b := ClassifyDuration(utterance); b != types.DurationUnknown && !isBareNumber(utterance) {
		info.Duration = &types.TripDuration{Bucket: b}
	}
	info.Dates = extractDates(utterance)
	return info
}

func extractDestination(utterance string) string {
	toks := tokens(utterance)
	for _, lead := range destinationLeadIns {
		i := indexOf(toks, lead)
		if i < 0 {
			continue
		}
		var picked []string
		for _, t := range toks[i+len(lead):] {
			if len(picked) == 2 || destinationStopwords[t] || monthIndex(t) >= 0 || hasDigit(t) {
				break
			}
			picked = append(picked, t)
		}
		if len(picked) > 0 {
			return titleCase(strings.Join(picked, " "))
		}
	}
	return ""
}

func extractDates(utterance string) string {
	if m := isoDateRe.FindString(utterance); m != "" {
		return m
	}
	if m := monthDayRe.FindStringSubmatch(utterance); m != nil {
		month := titleCase(months[monthIndex(strings.ToLower(m[1]))])
		if m[3] != "" {
			return month + " " + m[2] + "-" + m[3]
		}
		return month + " " + m[2]
	}
	if m := dayMonthRe.FindStringSubmatch(utterance); m != nil {
		return titleCase(months[monthIndex(strings.ToLower(m[2]))]) + " " + m[1]
	}
	if month := DetectMonth(utterance); month != "" {
		return titleCase(month)
	}
	if m := relativeDateRe.FindString(utterance); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

func hasDigit(s string) bool {
	return strings.IndexAny(s, "0123456789") >= 0
}

func isBareNumber(utterance string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(utterance))
	return err == nil
}

// OverrideAction is the outcome of the "usual preferences or something different" question.
type OverrideAction string

const (
	ActionUseDefaults    OverrideAction = "use_defaults"
	ActionCreateOverride OverrideAction = "create_override"
	// ActionClarify asks again: either the user only said "different" or
	// nothing in the reply names a preference.
	ActionClarify        OverrideAction = "clarify"
)

// Override keys stored in TripContext.Overrides.
const (
	OverrideBudgetStyle = "budget_style"
	OverrideCompanions  = "companions"
	OverrideActivities  = "activities"
	OverrideFreeText    = "free_text"
)

type OverrideIntent struct {
	Action       OverrideAction
	Overrides    map[string]string
	// WantsChange is set when the user asked for something different without saying what.
	WantsChange  bool
	FollowUpText string
}

var budgetVocabulary = map[string]types.BudgetStyle{
	"cheap": types.BudgetConscious, "cheaper": types.BudgetConscious, "affordable": types.BudgetConscious,
	"budget-friendly": types.BudgetConscious, "backpacking": types.BudgetConscious, "inexpensive": types.BudgetConscious,
	"moderate": types.BudgetMidRange, "mid-range": types.BudgetMidRange, "midrange": types.BudgetMidRange,
	"luxury": types.BudgetLuxury, "luxurious": types.BudgetLuxury, "upscale": types.BudgetLuxury,
	"splurge": types.BudgetLuxury, "fancy": types.BudgetLuxury, "five-star": types.BudgetLuxury,
}

var companionVocabulary = map[string]types.Companions{
	"solo": types.CompanionsSolo, "alone": types.CompanionsSolo, "myself": types.CompanionsSolo,
	"couple": types.CompanionsCouple, "partner": types.CompanionsCouple, "romantic": types.CompanionsCouple,
	"honeymoon": types.CompanionsCouple, "wife": types.CompanionsCouple, "husband": types.CompanionsCouple,
	"kids": types.CompanionsFamilyWithKids, "children": types.CompanionsFamilyWithKids, "family": types.CompanionsFamilyWithKids,
	"friends": types.CompanionsGroupOfFriends, "buddies": types.CompanionsGroupOfFriends,
	"tour": types.CompanionsOrganizedGroups, "relatives": types.CompanionsExtendedFamily,
}

var activityVocabulary = map[string]types.Activity{
	"beach": types.ActivityBeach, "beaches": types.ActivityBeach, "sea": types.ActivityBeach, "swimming": types.ActivityBeach,
	"hiking": types.ActivityHikingTrekking, "trekking": types.ActivityHikingTrekking, "mountains": types.ActivityHikingTrekking,
	"museums": types.ActivityArtsCulture, "art": types.ActivityArtsCulture, "culture": types.ActivityArtsCulture, "cultural": types.ActivityArtsCulture,
	"shopping": types.ActivityShopping, "markets": types.ActivityShopping,
	"food": types.ActivityFoodWine, "wine": types.ActivityFoodWine, "cuisine": types.ActivityFoodWine, "restaurants": types.ActivityFoodWine,
	"nightlife": types.ActivityNightlife, "party": types.ActivityNightlife, "bars": types.ActivityNightlife, "clubs": types.ActivityNightlife,
	"history": types.ActivityHistoricalSites, "historical": types.ActivityHistoricalSites, "ruins": types.ActivityHistoricalSites,
	"wildlife": types.ActivityWildlifeNature, "nature": types.ActivityWildlifeNature, "safari": types.ActivityWildlifeNature,
	"adventure": types.ActivityAdventureSports, "diving": types.ActivityAdventureSports, "surfing": types.ActivityAdventureSports,
	"photography": types.ActivityPhotography,
	"spa": types.ActivityWellness, "wellness": types.ActivityWellness, "yoga": types.ActivityWellness, "relaxing": types.ActivityWellness,
	"festival": types.ActivityFestivalsEvents, "festivals": types.ActivityFestivalsEvents, "concerts": types.ActivityFestivalsEvents,
}

// DetectOverrideIntent classifies an answer to the preference confirmation
// question. A reply is only taken as an override when it names something from
// the preference vocabulary; anything else is re-prompted.
func DetectOverrideIntent(utterance string) OverrideIntent {
	toks := tokens(utterance)
	overrides := preferenceOverrides(toks)
	if len(overrides) > 0 {
		overrides[OverrideFreeText] = strings.TrimSpace(utterance)
		return OverrideIntent{Action: ActionCreateOverride, Overrides: overrides, FollowUpText: strings.TrimSpace(utterance)}
	}
	switch {
	case negatedNear(toks, rejectNegators, usualWords):
		return OverrideIntent{Action: ActionClarify, WantsChange: true}
	case negatedNear(toks, rejectNegators, affirmWords):
		return OverrideIntent{Action: ActionClarify}
	case containsAny(toks, sameKeywords), negatesChange(toks):
		return OverrideIntent{Action: ActionUseDefaults}
	case containsAny(toks, differentKeywords):
		return OverrideIntent{Action: ActionClarify, WantsChange: true}
	}
	return OverrideIntent{Action: ActionClarify}
}

var (
	negators       = map[string]bool{"no": true, "not": true, "nothing": true, "don't": true, "dont": true, "without": true, "never": true}
	rejectNegators = map[string]bool{"not": true, "don't": true, "dont": true}
	changeWords    = map[string]bool{"change": true, "changes": true, "new": true, "different": true, "else": true}
	changeBridges  = map[string]bool{"need": true, "for": true, "to": true, "any": true, "real": true, "big": true, "major": true}
	usualWords     = map[string]bool{"same": true, "usual": true, "normal": true, "typical": true, "regular": true}
	affirmWords    = map[string]bool{"sure": true, "yes": true}
	clauseStarts   = map[string]bool{"i": true, "we": true, "i'd": true, "i'm": true, "we'd": true, "let's": true}
)

// negatedNear reports whether a negator is followed within three tokens by
// one of words, as in "not the usual" or "not sure". A new clause ends the window.
func negatedNear(toks []string, neg, words map[string]bool) bool {
	for i, t := range toks {
		if !neg[t] {
			continue
		}
		for j := i + 1; j < len(toks) && j <= i+3; j++ {
			if clauseStarts[toks[j]] {
				break
			}
			if words[toks[j]] {
				return true
			}
		}
	}
	return false
}

// negatesChange spots "no changes", "nothing new" or "no need to change".
// Only a few bridging words may sit between the negation and the change word,
// so "no, something different" and "no, change it" stay requests for a change.
func negatesChange(toks []string) bool {
	for i, t := range toks {
		if !negators[t] {
			continue
		}
		for j := i + 1; j < len(toks) && j <= i+3; j++ {
			w := toks[j]
			if changeWords[w] {
				if t == "no" && j == i+1 && w == "change" {
					break
				}
				return true
			}
			if !changeBridges[w] {
				break
			}
		}
	}
	return false
}

func preferenceOverrides(toks []string) map[string]string {
	out := map[string]string{}
	var activities []string
	seen := map[types.Activity]bool{}
	for _, t := range toks {
		if b, ok := budgetVocabulary[t]; ok {
			out[OverrideBudgetStyle] = string(b)
		}
		if c, ok := companionVocabulary[t]; ok {
			out[OverrideCompanions] = string(c)
		}
		if a, ok := activityVocabulary[t]; ok && !seen[a] {
			seen[a] = true
			activities = append(activities, string(a))
		}
	}
	if len(activities) > 0 {
		sort.Strings(activities)
		out[OverrideActivities] = strings.Join(activities, ",")
	}
	return out
}

// ApplyOverrides returns a copy of profile with the trip-scoped overrides
// applied. The stored profile is never modified. A nil profile yields a
// profile built from the overrides alone.
func ApplyOverrides(profile *types.TravelerProfile, overrides map[string]string) *types.TravelerProfile {
	if len(overrides) == 0 {
		return profile
	}
	var p types.TravelerProfile
	if profile != nil {
		p = *profile
		p.TravelerTypes = append([]types.TravelerType(nil), profile.TravelerTypes...)
		p.ActivityPreferences = append([]types.Activity(nil), profile.ActivityPreferences...)
	}
	if b, ok := overrides[OverrideBudgetStyle]; ok {
		p.BudgetStyle = types.BudgetStyle(b)
	}
	if c, ok := overrides[OverrideCompanions]; ok {
		p.Companions = types.Companions(c)
	}
	if a, ok := overrides[OverrideActivities]; ok && a != "" {
		var acts []types.Activity
		for _, s := range strings.Split(a, ",") {
			acts = append(acts, types.Activity(s))
		}
		p.ActivityPreferences = acts
	}
	return &p
}
