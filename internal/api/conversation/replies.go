package conversation

import (
	"fmt"
	"math"
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// GenericErrorReply is sent whenever a turn fails internally.
const GenericErrorReply = "I encountered an error processing your request. How can I help you with travel recommendations?"

const (
	askDurationReply = "How long are you planning to travel? A short trip (a long weekend, 2-4 days) or a longer one (a week or more)?"

	askPreferencesReply = "Should I use your usual travel preferences, or would you like something different this time? " +
		"Say \"same as usual\" or tell me what you're in the mood for (e.g. beaches, cheaper, with kids)."

	askWhatToChangeReply = "Sure! What would you like to change? For example a different budget, who you're travelling with, " +
		"or activities such as hiking, food or nightlife."

	noResultsReply = "I couldn't find destinations that match right now. Could you describe what you're looking for in a different way?"

	reaskSelectionReply = "I'm not sure which destination you mean. You can say its name or its number in the list, like \"the first one\"."

	restartReply = "No problem, let's start over. Ask me for recommendations or tell me where you'd like to go."
)

func durationQuestion(month string) string {
	if month == "" {
		return askDurationReply
	}
	return fmt.Sprintf("Great, a trip in %s! %s", titleCase(month), askDurationReply)
}

func preferencesQuestion(profile *types.TravelerProfile) string {
	if profile == nil {
		return "Tell me a little about what you'd enjoy (beaches, culture, food, budget) or say \"surprise me\"."
	}
	return fmt.Sprintf("Your usual preferences are: %s. %s", profile.Summary(), askPreferencesReply)
}

func tripConfirmationQuestion(trip *types.TripContext, profile *types.TravelerProfile) string {
	lead := "Let's plan your trip!"
	if trip != nil && trip.Destination != "" {
		lead = fmt.Sprintf("Let's plan your trip to %s!", trip.Destination)
	}
	return lead + " " + preferencesQuestion(profile)
}

// missingFieldsQuestion asks for exactly the missing slots, in slot order.
func missingFieldsQuestion(missing []types.TripField) string {
	questions := map[types.TripField]string{
		types.FieldDestination: "where you'd like to go",
		types.FieldDuration:    "how many days you'll be travelling",
		types.FieldDates:       "when you're planning to travel",
	}
	parts := make([]string, 0, len(missing))
	for _, f := range missing {
		parts = append(parts, questions[f])
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return "Could you tell me " + parts[0] + "?"
	}
	return "Could you tell me " + strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1] + "?"
}

func clarifyPreferencesReply(wantsChange bool) string {
	if wantsChange {
		return askWhatToChangeReply
	}
	return "I didn't catch a preference there. Say \"same as usual\" to keep your profile, " +
		"or mention what you'd like instead (e.g. luxury, beaches, travelling with friends)."
}

func generatingReply(trip *types.TripContext) string {
	return fmt.Sprintf("Perfect, I have everything I need. Creating your itinerary for %s...", trip.Destination)
}

// FormatRecommendations renders the ranked list as numbered lines.
func FormatRecommendations(recs []types.ScoredDestination, month string) string {
	var b strings.Builder
	if month != "" {
		fmt.Fprintf(&b, "Here are my top picks for %s:\n\n", titleCase(month))
	} else {
		b.WriteString("Here are my top picks for you:\n\n")
	}
	for i, r := range recs {
		d := r.Destination
		fmt.Fprintf(&b, "%d. %s, %s", i+1, d.City, d.Country)
		if d.Region != "" {
			fmt.Fprintf(&b, " (%s)", d.Region)
		}
		if d.ShortDescription != "" {
			fmt.Fprintf(&b, " - %s", d.ShortDescription)
		}
		fmt.Fprintf(&b, " [%d%% match", int(math.Round(r.CombinedScore*100)))
		if r.MonthAvgTemp != nil {
			fmt.Fprintf(&b, ", avg %.0f°C", *r.MonthAvgTemp)
		}
		b.WriteString("]\n")
	}
	b.WriteString("\nWhich one would you like an itinerary for?")
	return b.String()
}
