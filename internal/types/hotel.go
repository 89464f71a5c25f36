package types

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	hotelDescriptionLimit = 300
	hotelFacilitiesLimit  = 10
)

// Hotel is a place to stay in a destination city.
type Hotel struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Stars       int      `json:"stars,omitempty"`
	Rating      string   `json:"rating"`
	Description string   `json:"description,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Website     string   `json:"website,omitempty"`
	Latitude    float64  `json:"latitude,omitempty"`
	Longitude   float64  `json:"longitude,omitempty"`
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// Tidy prepares a stored hotel for display: tags are stripped from the
// description, which is cut to 300 characters, at most ten facilities are
// kept, and missing names, addresses and ratings get placeholders.
func (h *Hotel) Tidy() {
	if strings.TrimSpace(h.Name) == "" {
		h.Name = "Unknown Hotel"
	}
	if strings.TrimSpace(h.Address) == "" {
		h.Address = "Address not available"
	}

	desc := htmlTagRe.ReplaceAllString(h.Description, "")
	desc = strings.Join(strings.Fields(strings.ReplaceAll(desc, `\n`, " ")), " ")
	if r := []rune(desc); len(r) > hotelDescriptionLimit {
		desc = string(r[:hotelDescriptionLimit]) + "..."
	}
	h.Description = desc

	if len(h.Facilities) > hotelFacilitiesLimit {
		h.Facilities = h.Facilities[:hotelFacilitiesLimit]
	}

	if h.Stars > 0 {
		h.Rating = fmt.Sprintf("%d Star", h.Stars)
	} else {
		h.Rating = "Not Rated"
	}
}
