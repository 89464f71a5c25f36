package conversation

import (
	"strconv"
	"strings"

	"github.com/somya-cb/ai-travel-assistant/internal/types"
)

// EffectKind names the side effect a turn asks the caller to run.
type EffectKind string

const (
	EffectNone      EffectKind = ""
	EffectRecommend EffectKind = "recommend"
	EffectItinerary EffectKind = "itinerary"
)

// Effect is work Step cannot do itself. The caller executes it and feeds the
// outcome back through ApplyRecommendations or CompleteItinerary.
type Effect struct {
	Kind           EffectKind
	Profile        *types.TravelerProfile
	Recommendation *types.RecommendationRequest
	Itinerary      *types.ItineraryRequest
}

// Result is the outcome of one dialogue turn.
type Result struct {
	State   types.ConversationState
	Reply   string
	Handled bool
	Effect  Effect
}

const (
	DefaultMaxItineraryDays = 7
	DefaultRecommendations  = 5
	shortTripDays           = 3
	longTripDays            = 7
)

var tripIntentPhrases = phrases("plan a trip", "plan my trip", "planning a trip", "itinerary", "vacation", "holiday")

// Engine drives the dialogue. It holds only configuration, so one Engine is
// shared by every conversation.
type Engine struct {
	maxItineraryDays int
	topN             int
}

func NewEngine(maxItineraryDays, topN int) *Engine {
	if maxItineraryDays <= 0 {
		maxItineraryDays = DefaultMaxItineraryDays
	}
	if topN <= 0 {
		topN = DefaultRecommendations
	}
	return &Engine{maxItineraryDays: maxItineraryDays, topN: topN}
}

func (e *Engine) MaxItineraryDays() int { return e.maxItineraryDays }

// Step computes the next state from the current state, the user's profile and
// one utterance. It never mutates its input and never performs I/O.
func (e *Engine) Step(state types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	next := state.Clone()
	utterance = strings.TrimSpace(utterance)

	if next.Phase != types.PhaseIdle && IsRestart(utterance) {
		return Result{State: next.Reset(), Reply: restartReply, Handled: true}
	}

	switch next.Phase {
	case types.PhaseWaitingDuration:
		return e.onWaitingDuration(next, profile, utterance)
	case types.PhaseWaitingPreferences:
		return e.onWaitingPreferences(next, profile, utterance)
	case types.PhaseShowingRecommendations:
		return e.onShowingRecommendations(next, profile, utterance)
	case types.PhaseAwaitingConfirmation:
		return e.onAwaitingConfirmation(next, profile, utterance)
	case types.PhaseDetailsGathering:
		return e.onDetailsGathering(next, profile, utterance)
	default:
		// ready is transient and an unknown phase is treated as a fresh start
		return e.onIdle(next.Reset(), profile, utterance)
	}
}

func (e *Engine) onIdle(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	if IsRecommendationRequest(utterance) {
		s.DetectedMonth = DetectMonth(utterance)
		s.DetectedDuration = ClassifyDuration(utterance)
		if s.DetectedDuration == types.DurationUnknown {
			s.Phase = types.PhaseWaitingDuration
			return Result{State: s, Reply: durationQuestion(s.DetectedMonth), Handled: true}
		}
		s.Phase = types.PhaseWaitingPreferences
		return Result{State: s, Reply: preferencesQuestion(profile), Handled: true}
	}

	info := ExtractTripInfo(utterance)
	if info.Destination == "" && !containsAny(tokens(utterance), tripIntentPhrases) {
		return Result{State: s, Handled: false}
	}

	s.Trip = &types.TripContext{}
	mergeTripInfo(s.Trip, info)
	if profile == nil {
		// nothing to confirm against
		return e.gate(s, profile)
	}
	s.Phase = types.PhaseAwaitingConfirmation
	return Result{State: s, Reply: tripConfirmationQuestion(s.Trip, profile), Handled: true}
}

func (e *Engine) onWaitingDuration(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	bucket := ClassifyDuration(utterance)
	if bucket == types.DurationUnknown {
		return Result{State: s, Reply: askDurationReply, Handled: true}
	}
	s.DetectedDuration = bucket
	if month := DetectMonth(utterance); month != "" {
		s.DetectedMonth = month
	}
	s.Phase = types.PhaseWaitingPreferences
	return Result{State: s, Reply: preferencesQuestion(profile), Handled: true}
}

func (e *Engine) onWaitingPreferences(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	intent := DetectOverrideIntent(utterance)
	if profile == nil && intent.Action == ActionClarify && !intent.WantsChange {
		// without a profile the reply itself is the query
		intent = OverrideIntent{Action: ActionCreateOverride, FollowUpText: utterance}
	}

	switch intent.Action {
	case ActionUseDefaults:
		s.OverrideText = ""
		return e.recommend(s, profile, nil)
	case ActionCreateOverride:
		s.OverrideText = intent.FollowUpText
		return e.recommend(s, profile, intent.Overrides)
	}
	return Result{State: s, Reply: clarifyPreferencesReply(intent.WantsChange), Handled: true}
}

// recommend stays in waiting_preferences until the ranked list comes back.
func (e *Engine) recommend(s types.ConversationState, profile *types.TravelerProfile, overrides map[string]string) Result {
	req := &types.RecommendationRequest{
		Mode:     types.SearchModeSurprise,
		Override: s.OverrideText,
		Duration: s.DetectedDuration,
		Month:    s.DetectedMonth,
		Limit:    e.topN,
	}
	return Result{
		State:   s,
		Reply:   "Let me find some destinations for you...",
		Handled: true,
		Effect:  Effect{Kind: EffectRecommend, Profile: ApplyOverrides(profile, overrides), Recommendation: req},
	}
}

// ApplyRecommendations folds the outcome of an EffectRecommend into the state.
// A failure or an empty list keeps the conversation in waiting_preferences
// with a clarifying question.
func (e *Engine) ApplyRecommendations(state types.ConversationState, resp *types.RecommendationResponse, err error) Result {
	s := state.Clone()
	if err != nil || resp == nil || len(resp.Recommendations) == 0 {
		s.Phase = types.PhaseWaitingPreferences
		s.CurrentRecommendations = nil
		return Result{State: s, Reply: noResultsReply, Handled: true}
	}
	s.Phase = types.PhaseShowingRecommendations
	s.CurrentRecommendations = append([]types.ScoredDestination(nil), resp.Recommendations...)
	return Result{State: s, Reply: FormatRecommendations(s.CurrentRecommendations, s.DetectedMonth), Handled: true}
}

func (e *Engine) onShowingRecommendations(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	picked, ok := ResolveSelection(utterance, s.CurrentRecommendations)
	if !ok {
		if IsRecommendationRequest(utterance) {
			return e.onIdle(s.Reset(), profile, utterance)
		}
		return Result{State: s, Reply: reaskSelectionReply, Handled: true}
	}

	d := picked.Destination
	trip := &types.TripContext{Destination: d.City}
	if s.DetectedDuration != types.DurationUnknown {
		trip.Duration = &types.TripDuration{Days: bucketDays(s.DetectedDuration), Bucket: s.DetectedDuration}
	}
	if s.DetectedMonth != "" {
		trip.Dates = titleCase(s.DetectedMonth)
	}
	if s.OverrideText != "" {
		trip.Overrides = map[string]string{OverrideFreeText: s.OverrideText}
		if intent := DetectOverrideIntent(s.OverrideText); intent.Action == ActionCreateOverride {
			trip.Overrides = intent.Overrides
		}
	}

	s.Phase = types.PhaseReady
	s.Trip = trip
	s.CurrentRecommendations = nil
	req := e.itineraryRequest(s, profile, &d)
	return Result{State: s, Reply: generatingReply(trip), Handled: true, Effect: Effect{Kind: EffectItinerary, Profile: req.Profile, Itinerary: req}}
}

func (e *Engine) onAwaitingConfirmation(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	mergeTripInfo(s.Trip, ExtractTripInfo(utterance))
	intent := DetectOverrideIntent(utterance)
	switch intent.Action {
	case ActionUseDefaults:
		return e.gate(s, profile)
	case ActionCreateOverride:
		if s.Trip.Overrides == nil {
			s.Trip.Overrides = map[string]string{}
		}
		for k, v := range intent.Overrides {
			s.Trip.Overrides[k] = v
		}
		return e.gate(s, profile)
	}
	return Result{State: s, Reply: clarifyPreferencesReply(intent.WantsChange), Handled: true}
}

func (e *Engine) onDetailsGathering(s types.ConversationState, profile *types.TravelerProfile, utterance string) Result {
	info := ExtractTripInfo(utterance)
	missing := s.Trip.MissingFields()
	if len(missing) > 0 {
		fillAsked(&info, missing, utterance)
	}
	mergeTripInfo(s.Trip, info)
	return e.gate(s, profile)
}

// gate moves to ready only when every slot is filled; otherwise it asks for
// the missing slots and nothing else.
func (e *Engine) gate(s types.ConversationState, profile *types.TravelerProfile) Result {
	if s.Trip == nil {
		s.Trip = &types.TripContext{}
	}
	missing := s.Trip.MissingFields()
	if len(missing) > 0 {
		s.Phase = types.PhaseDetailsGathering
		return Result{State: s, Reply: missingFieldsQuestion(missing), Handled: true}
	}
	s.Phase = types.PhaseReady
	req := e.itineraryRequest(s, profile, nil)
	return Result{State: s, Reply: generatingReply(s.Trip), Handled: true, Effect: Effect{Kind: EffectItinerary, Profile: req.Profile, Itinerary: req}}
}

func (e *Engine) itineraryRequest(s types.ConversationState, profile *types.TravelerProfile, d *types.Destination) *types.ItineraryRequest {
	trip := s.Trip
	req := &types.ItineraryRequest{
		City:        trip.Destination,
		Destination: d,
		Overrides:   trip.Overrides,
		Dates:       trip.Dates,
		Month:       DetectMonth(trip.Dates),
	}
	if req.Month == "" {
		req.Month = s.DetectedMonth
	}
	if d != nil {
		req.Country = d.Country
	}
	if trip.Duration != nil {
		req.Days = trip.Duration.Days
		req.Bucket = trip.Duration.Bucket
	}
	req.Profile = ApplyOverrides(profile, trip.Overrides)
	return req
}

// CompleteItinerary ends the trip flow once the itinerary has been produced.
func (e *Engine) CompleteItinerary(state types.ConversationState, itinerary types.Itinerary) Result {
	return Result{State: state.Reset(), Reply: itinerary.Text, Handled: true}
}

// fillAsked reads answers to the pending questions even without a lead-in
// phrase: a short bare reply to "where" is the destination and a bare
// number is the day count.
func fillAsked(info *TripInfo, missing []types.TripField, utterance string) {
	toks := tokens(utterance)
	if len(toks) == 0 || len(toks) > 3 {
		return
	}
	for _, f := range missing {
		if f == types.FieldDuration && info.Duration == nil {
			if n := bareDays(toks); n > 0 {
				info.Duration = &types.TripDuration{Days: n, Bucket: bucketForDays(n)}
				return
			}
		}
	}
	if missing[0] != types.FieldDestination || info.Destination != "" || info.Duration != nil || info.Dates != "" {
		return
	}
	for _, t := range toks {
		if hasDigit(t) || destinationStopwords[t] {
			return
		}
	}
	if containsAny(toks, sameKeywords) || containsAny(toks, differentKeywords) {
		return
	}
	info.Destination = titleCase(strings.Join(toks, " "))
}

func bareDays(toks []string) int {
	if len(toks) > 2 {
		return 0
	}
	for _, t := range toks {
		if n, ok := numberWords[t]; ok {
			return n
		}
		if n, err := strconv.Atoi(t); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// mergeTripInfo fills slots from info, keeping what the trip already has
// unless the new utterance states it again.
func mergeTripInfo(trip *types.TripContext, info TripInfo) {
	if trip == nil {
		return
	}
	if info.Destination != "" {
		trip.Destination = info.Destination
	}
	if info.Duration != nil {
		d := *info.Duration
		trip.Duration = &d
	}
	if info.Dates != "" {
		trip.Dates = info.Dates
	}
}

func bucketDays(b types.DurationBucket) int {
	switch b {
	case types.DurationShort:
		return shortTripDays
	case types.DurationLong:
		return longTripDays
	}
	return 0
}
