package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/somya-cb/ai-travel-assistant/app/observability/metrics"
	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// ItineraryWriter asks the generator for a day-by-day plan. It never fails:
// errors and timeouts are replaced by a fallback text.
type ItineraryWriter struct {
	generator TextGenerator
	timeout   time.Duration
	maxDays   int
	logger    *slog.Logger
}

func NewItineraryWriter(generator TextGenerator, timeout time.Duration, maxDays int, logger *slog.Logger) *ItineraryWriter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxDays <= 0 {
		maxDays = 7
	}
	return &ItineraryWriter{generator: generator, timeout: timeout, maxDays: maxDays, logger: logger}
}

func (w *ItineraryWriter) Write(ctx context.Context, req types.ItineraryRequest) types.Itinerary {
	l := w.logger.With(slog.String("method", "Write"), slog.String("city", req.City))

	out := types.Itinerary{City: req.City}
	if w.generator == nil {
		out.Text, out.Fallback = FallbackItinerary(req), true
		w.record(ctx, true)
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	text, err := w.generator.Generate(ctx, BuildItineraryPrompt(req, w.maxDays))
	if err != nil {
		l.WarnContext(ctx, "Itinerary generation failed, using fallback", slog.Any("error", err))
		out.Text, out.Fallback = FallbackItinerary(req), true
		w.record(ctx, true)
		return out
	}
	out.Text = text
	w.record(ctx, false)
	return out
}

func (w *ItineraryWriter) record(ctx context.Context, fallback bool) {
	metrics.Get().ItineraryGenerationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("fallback", fallback)))
}

// FallbackItinerary is shown when the generator is unavailable.
func FallbackItinerary(req types.ItineraryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'd love to help you plan your trip to %s! ", req.City)
	if req.Destination != nil && req.Destination.ShortDescription != "" {
		fmt.Fprintf(&b, "%s is known for: %s ", req.Destination.DisplayName(), req.Destination.ShortDescription)
	}
	b.WriteString("I'm having trouble putting together a detailed itinerary right now. Please try again in a moment!")
	return b.String()
}

// BuildItineraryPrompt renders the generation prompt. The day count is
// capped at maxDays; the requested count is still mentioned when it is larger.
func BuildItineraryPrompt(req types.ItineraryRequest, maxDays int) string {
	var b strings.Builder

	place := req.City
	if req.Country != "" {
		place += ", " + req.Country
	}
	fmt.Fprintf(&b, "Create a detailed travel itinerary for %s.\n\n", place)

	if d := req.Destination; d != nil {
		b.WriteString("DESTINATION DATA:\n")
		fmt.Fprintf(&b, "- Description: %s\n", d.ShortDescription)
		fmt.Fprintf(&b, "- Budget Level: %s\n", d.BudgetLevel)
		fmt.Fprintf(&b, "- Ideal Duration: %s\n", d.IdealDurations)
		fmt.Fprintf(&b, "- Culture Score: %d/100\n", d.Scores.Culture)
		fmt.Fprintf(&b, "- Adventure Score: %d/100\n", d.Scores.Adventure)
		fmt.Fprintf(&b, "- Nature Score: %d/100\n", d.Scores.Nature)
		fmt.Fprintf(&b, "- Food Score: %d/100\n", d.Scores.Cuisine)
		fmt.Fprintf(&b, "- Nightlife Score: %d/100\n", d.Scores.Nightlife)
		if t, ok := d.AvgTempFor(req.Month); ok {
			fmt.Fprintf(&b, "- Average temperature in %s: %.0f°C\n", titleWord(req.Month), t)
		}
		b.WriteString("\n")
	}

	if p := req.Profile; p != nil {
		b.WriteString("TRAVELER PROFILE:\n")
		fmt.Fprintf(&b, "- %s\n\n", strings.ReplaceAll(p.Summary(), "; ", "\n- "))
	}

	if len(req.Overrides) > 0 {
		b.WriteString("CHANGES FOR THIS TRIP (take priority over the profile):\n")
		keys := make([]string, 0, len(req.Overrides))
		for k := range req.Overrides {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", strings.ReplaceAll(k, "_", " "), req.Overrides[k])
		}
		b.WriteString("\n")
	}

	b.WriteString("TRIP DETAILS:\n")
	days := types.TripDuration{Days: req.Days}.ItineraryDays(maxDays)
	switch {
	case days > 0 && req.Days > days:
		fmt.Fprintf(&b, "- Duration: %d days requested; plan the first %d days in detail\n", req.Days, days)
	case days > 0:
		fmt.Fprintf(&b, "- Duration: %d days\n", days)
	case req.Bucket != types.DurationUnknown:
		fmt.Fprintf(&b, "- Duration: %s trip\n", req.Bucket)
	default:
		b.WriteString("- Duration: flexible\n")
	}
	if req.Dates != "" {
		fmt.Fprintf(&b, "- Dates: %s\n", req.Dates)
	}
	if req.Month != "" {
		fmt.Fprintf(&b, "- Month: %s\n", titleWord(req.Month))
	} else if req.Dates == "" {
		b.WriteString("- Month: flexible\n")
	}
	if req.Hotel != nil {
		fmt.Fprintf(&b, "- Hotel: %s, %s\n", req.Hotel.Name, req.Hotel.Address)
	}

	b.WriteString(`
INSTRUCTIONS:
Create a realistic day-by-day itinerary that focuses on the destination's strongest
features matching the traveler's interests, with costs appropriate for the budget,
specific activity and place names, and local tips.

FORMAT:
For each day give a theme, then Morning, Afternoon and Evening with an activity,
why it suits the traveler and an estimated cost per person. Finish with an
accommodation suggestion, a budget summary and three or four personalised tips.
`)
	return b.String()
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
