package types

// ItineraryRequest is everything the text generator is told about a trip.
// Destination is nil when the trip was named in free text and the corpus has
// no matching record.
type ItineraryRequest struct {
	City        string
	Country     string
	Destination *Destination
	Profile     *TravelerProfile
	Overrides   map[string]string
	Month       string
	Days        int
	Dates       string
	Bucket      DurationBucket
	// Hotel is optional; the plan is built around it when set.
	Hotel       *Hotel
}

// Itinerary is the generated plan returned to the user.
type Itinerary struct {
	City     string `json:"city"`
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
}
