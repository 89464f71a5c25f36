package types

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the single authoritative dialogue state of a conversation. The
// recommendation sub-flow and the trip-context sub-flow are both views of it.
type Phase string

const (
	PhaseIdle                   Phase = "idle"
	PhaseWaitingDuration        Phase = "waiting_duration"
	PhaseWaitingPreferences     Phase = "waiting_preferences"
	PhaseShowingRecommendations Phase = "showing_recommendations"
	PhaseAwaitingConfirmation   Phase = "awaiting_confirmation"
	PhaseDetailsGathering       Phase = "details_gathering"
	PhaseReady                  Phase = "ready"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseWaitingDuration, PhaseWaitingPreferences, PhaseShowingRecommendations,
		PhaseAwaitingConfirmation, PhaseDetailsGathering, PhaseReady:
		return true
	}
	return false
}

type RecommendationState string

const (
	RecommendationNone                   RecommendationState = "none"
	RecommendationWaitingDuration        RecommendationState = "waiting_duration"
	RecommendationWaitingPreferences     RecommendationState = "waiting_preferences"
	RecommendationShowingRecommendations RecommendationState = "showing_recommendations"
)

type ConfirmationStep string

const (
	ConfirmationNone             ConfirmationStep = "none"
	ConfirmationAwaiting         ConfirmationStep = "awaiting_confirmation"
	ConfirmationDetailsGathering ConfirmationStep = "details_gathering"
	ConfirmationReady            ConfirmationStep = "ready"
)

// RecommendationState projects the phase onto the recommendation sub-flow.
func (p Phase) RecommendationState() RecommendationState {
	switch p {
	case PhaseWaitingDuration:
		return RecommendationWaitingDuration
	case PhaseWaitingPreferences:
		return RecommendationWaitingPreferences
	case PhaseShowingRecommendations:
		return RecommendationShowingRecommendations
	}
	return RecommendationNone
}

// ConfirmationStep projects the phase onto the trip-context sub-flow.
func (p Phase) ConfirmationStep() ConfirmationStep {
	switch p {
	case PhaseAwaitingConfirmation:
		return ConfirmationAwaiting
	case PhaseDetailsGathering:
		return ConfirmationDetailsGathering
	case PhaseReady:
		return ConfirmationReady
	}
	return ConfirmationNone
}

// TripField names a slot of the trip context.
type TripField string

const (
	FieldDestination TripField = "destination"
	FieldDuration    TripField = "duration"
	FieldDates       TripField = "dates"
)

// TripDuration keeps the number of days the user asked for. Days is never
// clamped; ItineraryDays applies the generation cap.
type TripDuration struct {
	Days   int            `json:"days,omitempty"`
	Bucket DurationBucket `json:"bucket,omitempty"`
}

// ItineraryDays caps Days at max for itinerary generation. Zero days yields zero.
func (d TripDuration) ItineraryDays(max int) int {
	if max > 0 && d.Days > max {
		return max
	}
	return d.Days
}

// TripContext is the per-conversation record of the trip being planned.
type TripContext struct {
	Destination string            `json:"destination,omitempty"`
	Duration    *TripDuration     `json:"duration,omitempty"`
	Dates       string            `json:"dates,omitempty"`
	Overrides   map[string]string `json:"overrides,omitempty"`
}

// MissingFields returns the unfilled slots in a fixed order.
func (t *TripContext) MissingFields() []TripField {
	var missing []TripField
	if t == nil {
		return []TripField{FieldDestination, FieldDuration, FieldDates}
	}
	if t.Destination == "" {
		missing = append(missing, FieldDestination)
	}
	if t.Duration == nil || (t.Duration.Days == 0 && t.Duration.Bucket == DurationUnknown) {
		missing = append(missing, FieldDuration)
	}
	if t.Dates == "" {
		missing = append(missing, FieldDates)
	}
	return missing
}

// Ready reports whether destination, duration and dates are all present.
func (t *TripContext) Ready() bool {
	return len(t.MissingFields()) == 0
}

func (t *TripContext) clone() *TripContext {
	if t == nil {
		return nil
	}
	c := *t
	if t.Duration != nil {
		d := *t.Duration
		c.Duration = &d
	}
	if t.Overrides != nil {
		c.Overrides = make(map[string]string, len(t.Overrides))
		for k, v := range t.Overrides {
			c.Overrides[k] = v
		}
	}
	return &c
}

// ConversationState is owned by the caller and passed into every dialogue turn.
type ConversationState struct {
	ConversationID         string              `json:"conversation_id"`
	UserID                 uuid.UUID           `json:"user_id"`
	Phase                  Phase               `json:"phase"`
	DetectedMonth          string              `json:"detected_month,omitempty"`
	DetectedDuration       DurationBucket      `json:"detected_duration,omitempty"`
	OverrideText           string              `json:"override_text,omitempty"`
	CurrentRecommendations []ScoredDestination `json:"current_recommendations,omitempty"`
	Trip                   *TripContext        `json:"trip,omitempty"`
	Turns                  int                 `json:"turns"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

func NewConversationState(conversationID string, userID uuid.UUID) ConversationState {
	return ConversationState{
		ConversationID: conversationID,
		UserID:         userID,
		Phase:          PhaseIdle,
	}
}

// Reset returns the state to idle, keeping identity and turn count.
func (s ConversationState) Reset() ConversationState {
	r := NewConversationState(s.ConversationID, s.UserID)
	r.Turns = s.Turns
	r.UpdatedAt = s.UpdatedAt
	return r
}

// Clone deep-copies the slices and maps so a transition never aliases its input.
func (s ConversationState) Clone() ConversationState {
	c := s
	if s.CurrentRecommendations != nil {
		c.CurrentRecommendations = make([]ScoredDestination, len(s.CurrentRecommendations))
		copy(c.CurrentRecommendations, s.CurrentRecommendations)
	}
	c.Trip = s.Trip.clone()
	return c
}
