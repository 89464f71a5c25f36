package types

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxTravelerTypes       = 3
	MaxActivityPreferences = 5
)

// --- ENUM Types ---

// TravelerType is one of the persona archetypes a traveler can pick.
type TravelerType string

const (
	TravelerCulturalExplorer TravelerType = "cultural_explorer"
	TravelerAdventureSeeker  TravelerType = "adventure_seeker"
	TravelerLuxuryTraveler   TravelerType = "luxury_traveler"
	TravelerSocialButterfly  TravelerType = "social_butterfly"
	TravelerNatureLover      TravelerType = "nature_lover"
	TravelerBudgetBackpacker TravelerType = "budget_backpacker"
	TravelerWellnessGuru     TravelerType = "wellness_guru"
	TravelerFoodie           TravelerType = "foodie"
	TravelerSoloWanderer     TravelerType = "solo_wanderer"
	TravelerFamilyVacationer TravelerType = "family_vacationer"
)

var travelerTypeNames = map[TravelerType]string{
	TravelerCulturalExplorer: "Cultural Explorer",
	TravelerAdventureSeeker:  "Adventure Seeker",
	TravelerLuxuryTraveler:   "Luxury Traveler",
	TravelerSocialButterfly:  "Social Butterfly",
	TravelerNatureLover:      "Nature Lover",
	TravelerBudgetBackpacker: "Budget Backpacker",
	TravelerWellnessGuru:     "Wellness Guru",
	TravelerFoodie:           "Foodie",
	TravelerSoloWanderer:     "Solo Wanderer",
	TravelerFamilyVacationer: "Family Vacationer",
}

func (t TravelerType) Valid() bool {
	_, ok := travelerTypeNames[t]
	return ok
}

func (t TravelerType) DisplayName() string {
	if name, ok := travelerTypeNames[t]; ok {
		return name
	}
	return humanize(string(t), true)
}

// BudgetStyle is ordinal: budget_conscious < mid_range < luxury.
type BudgetStyle string

const (
	BudgetConscious BudgetStyle = "budget_conscious"
	BudgetMidRange  BudgetStyle = "mid_range"
	BudgetLuxury    BudgetStyle = "luxury"
)

// Rank returns the ordinal position of the tier, or -1 for an unknown value.
func (b BudgetStyle) Rank() int {
	switch b {
	case BudgetConscious:
		return 0
	case BudgetMidRange:
		return 1
	case BudgetLuxury:
		return 2
	default:
		return -1
	}
}

func (b BudgetStyle) Valid() bool { return b.Rank() >= 0 }

func (b BudgetStyle) DisplayName() string {
	switch b {
	case BudgetConscious:
		return "budget-friendly"
	case BudgetMidRange:
		return "mid-range"
	case BudgetLuxury:
		return "luxury"
	default:
		return humanize(string(b), false)
	}
}

// Scan implements the sql.Scanner interface for BudgetStyle.
func (b *BudgetStyle) Scan(value interface{}) error {
	strVal, ok := value.(string)
	if !ok {
		bytesVal, ok := value.([]byte)
		if !ok {
			return fmt.Errorf("failed to scan BudgetStyle: expected string or []byte, got %T", value)
		}
		strVal = string(bytesVal)
	}
	if !BudgetStyle(strVal).Valid() {
		return fmt.Errorf("unknown BudgetStyle value: %s", strVal)
	}
	*b = BudgetStyle(strVal)
	return nil
}

// Value implements the driver.Valuer interface for BudgetStyle.
func (b BudgetStyle) Value() (driver.Value, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("invalid BudgetStyle value: %s", b)
	}
	return string(b), nil
}

type Companions string

const (
	CompanionsSolo            Companions = "solo"
	CompanionsCouple          Companions = "couple"
	CompanionsFamilyWithKids  Companions = "family_with_kids"
	CompanionsGroupOfFriends  Companions = "group_of_friends"
	CompanionsOrganizedGroups Companions = "organized_groups"
	CompanionsExtendedFamily  Companions = "extended_family"
)

func (c Companions) Valid() bool {
	switch c {
	case CompanionsSolo, CompanionsCouple, CompanionsFamilyWithKids,
		CompanionsGroupOfFriends, CompanionsOrganizedGroups, CompanionsExtendedFamily:
		return true
	}
	return false
}

func (c Companions) DisplayName() string { return humanize(string(c), false) }

type Activity string

const (
	ActivityBeach           Activity = "beach_activities"
	ActivityHikingTrekking  Activity = "hiking_trekking"
	ActivityArtsCulture     Activity = "arts_culture"
	ActivityShopping        Activity = "shopping"
	ActivityFoodWine        Activity = "food_wine"
	ActivityNightlife       Activity = "nightlife"
	ActivityHistoricalSites Activity = "historical_sites"
	ActivityWildlifeNature  Activity = "wildlife_nature"
	ActivityAdventureSports Activity = "adventure_sports"
	ActivityPhotography     Activity = "photography"
	ActivityWellness        Activity = "wellness"
	ActivityFestivalsEvents Activity = "festivals_events"
)

func (a Activity) Valid() bool {
	switch a {
	case ActivityBeach, ActivityHikingTrekking, ActivityArtsCulture, ActivityShopping,
		ActivityFoodWine, ActivityNightlife, ActivityHistoricalSites, ActivityWildlifeNature,
		ActivityAdventureSports, ActivityPhotography, ActivityWellness, ActivityFestivalsEvents:
		return true
	}
	return false
}

type DietaryRestriction string

const (
	DietaryNone         DietaryRestriction = "no_restrictions"
	DietaryVegetarian   DietaryRestriction = "vegetarian"
	DietaryVegan        DietaryRestriction = "vegan"
	DietaryPescatarian  DietaryRestriction = "pescatarian"
	DietaryGlutenFree   DietaryRestriction = "gluten_free"
	DietaryLactoseFree  DietaryRestriction = "lactose_free"
	DietaryReligiousLaw DietaryRestriction = "religious_dietary"
)

func (d DietaryRestriction) Valid() bool {
	switch d {
	case DietaryNone, DietaryVegetarian, DietaryVegan, DietaryPescatarian,
		DietaryGlutenFree, DietaryLactoseFree, DietaryReligiousLaw:
		return true
	}
	return false
}

type AccessibilityNeed string

const (
	AccessibilityNone                    AccessibilityNeed = "no_special_needs"
	AccessibilityMobility                AccessibilityNeed = "mobility_assistance"
	AccessibilityHearing                 AccessibilityNeed = "hearing_assistance"
	AccessibilityVision                  AccessibilityNeed = "vision_assistance"
	AccessibilityPhysicalLimitations     AccessibilityNeed = "physical_limitations"
	AccessibilityCognitiveConsiderations AccessibilityNeed = "cognitive_considerations"
)

func (a AccessibilityNeed) Valid() bool {
	switch a {
	case AccessibilityNone, AccessibilityMobility, AccessibilityHearing, AccessibilityVision,
		AccessibilityPhysicalLimitations, AccessibilityCognitiveConsiderations:
		return true
	}
	return false
}

// --- Profile ---

// TravelerProfile is the normalized persona used for query synthesis and scoring.
type TravelerProfile struct {
	UserID              uuid.UUID            `json:"user_id"`
	Name                string               `json:"name,omitempty"`
	TravelerTypes       []TravelerType       `json:"traveler_types"`
	BudgetStyle         BudgetStyle          `json:"budget_style"`
	Companions          Companions           `json:"companions,omitempty"`
	ActivityPreferences []Activity           `json:"activity_preferences"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  []AccessibilityNeed  `json:"accessibility_needs,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// CreateTravelerProfileParams is the payload accepted when a profile is created or replaced.
type CreateTravelerProfileParams struct {
	Name                string               `json:"name,omitempty"`
	TravelerTypes       []TravelerType       `json:"traveler_types"`
	BudgetStyle         BudgetStyle          `json:"budget_style"`
	Companions          Companions           `json:"companions,omitempty"`
	ActivityPreferences []Activity           `json:"activity_preferences"`
	DietaryRestrictions []DietaryRestriction `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  []AccessibilityNeed  `json:"accessibility_needs,omitempty"`
}

// NewTravelerProfile builds and validates a profile. An invalid profile is
// returned as an error wrapping ErrInvalidProfile.
func NewTravelerProfile(userID uuid.UUID, params CreateTravelerProfileParams, now time.Time) (*TravelerProfile, error) {
	p := &TravelerProfile{
		UserID:              userID,
		Name:                strings.TrimSpace(params.Name),
		TravelerTypes:       params.TravelerTypes,
		BudgetStyle:         params.BudgetStyle,
		Companions:          params.Companions,
		ActivityPreferences: params.ActivityPreferences,
		DietaryRestrictions: params.DietaryRestrictions,
		AccessibilityNeeds:  params.AccessibilityNeeds,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks selection caps, enum membership and duplicates.
func (p *TravelerProfile) Validate() error {
	var problems []string

	if msg := checkSet("traveler_types", p.TravelerTypes, MaxTravelerTypes, TravelerType.Valid); msg != "" {
		problems = append(problems, msg)
	}
	if !p.BudgetStyle.Valid() {
		problems = append(problems, fmt.Sprintf("budget_style %q is not one of budget_conscious, mid_range, luxury", p.BudgetStyle))
	}
	if p.Companions != "" && !p.Companions.Valid() {
		problems = append(problems, fmt.Sprintf("companions %q is not recognised", p.Companions))
	}
	if msg := checkSet("activity_preferences", p.ActivityPreferences, MaxActivityPreferences, Activity.Valid); msg != "" {
		problems = append(problems, msg)
	}
	if msg := checkSet("dietary_restrictions", p.DietaryRestrictions, 0, DietaryRestriction.Valid); msg != "" {
		problems = append(problems, msg)
	}
	if msg := checkSet("accessibility_needs", p.AccessibilityNeeds, 0, AccessibilityNeed.Valid); msg != "" {
		problems = append(problems, msg)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(problems, "; "))
	}
	return nil
}

// checkSet returns a description of the first problem in values, or "".
// A max of 0 means the set is uncapped.
func checkSet[T ~string](field string, values []T, max int, valid func(T) bool) string {
	if max > 0 && len(values) > max {
		return fmt.Sprintf("%s allows at most %d selections, got %d", field, max, len(values))
	}
	seen := make(map[T]struct{}, len(values))
	for _, v := range values {
		if !valid(v) {
			return fmt.Sprintf("%s contains unknown value %q", field, v)
		}
		if _, dup := seen[v]; dup {
			return fmt.Sprintf("%s contains duplicate value %q", field, v)
		}
		seen[v] = struct{}{}
	}
	return ""
}

// Summary renders the profile as a single line for prompts and confirmations.
func (p *TravelerProfile) Summary() string {
	var parts []string

	if len(p.TravelerTypes) > 0 {
		names := make([]string, len(p.TravelerTypes))
		for i, t := range p.TravelerTypes {
			names[i] = t.DisplayName()
		}
		parts = append(parts, "Travel style: "+strings.Join(names, ", "))
	}
	if p.BudgetStyle != "" {
		parts = append(parts, "Budget: "+p.BudgetStyle.DisplayName())
	}
	if p.Companions != "" {
		parts = append(parts, "Companions: "+p.Companions.DisplayName())
	}
	if len(p.ActivityPreferences) > 0 {
		parts = append(parts, "Activities: "+joinHumanized(p.ActivityPreferences))
	}
	if len(p.DietaryRestrictions) > 0 && !(len(p.DietaryRestrictions) == 1 && p.DietaryRestrictions[0] == DietaryNone) {
		parts = append(parts, "Dietary: "+joinHumanized(p.DietaryRestrictions))
	}
	if len(p.AccessibilityNeeds) > 0 && !(len(p.AccessibilityNeeds) == 1 && p.AccessibilityNeeds[0] == AccessibilityNone) {
		parts = append(parts, "Accessibility: "+joinHumanized(p.AccessibilityNeeds))
	}
	return strings.Join(parts, "; ")
}

func joinHumanized[T ~string](values []T) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = humanize(string(v), false)
	}
	return strings.Join(out, ", ")
}

// humanize turns snake_case into spaced words, optionally title-cased.
func humanize(s string, title bool) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	if title {
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
