package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHotelTidy(t *testing.T) {
	t.Run("long descriptions are stripped and cut", func(t *testing.T) {
		h := Hotel{
			Name:        "Casa Azul",
			Address:     "Rua Augusta 1",
			Stars:       5,
			Description: "<b>Great</b> views" + `\n` + strings.Repeat("x", 400),
			Facilities:  []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
		}
		h.Tidy()

		assert.Equal(t, "5 Star", h.Rating)
		assert.True(t, strings.HasPrefix(h.Description, "Great views x"))
		assert.True(t, strings.HasSuffix(h.Description, "..."))
		assert.Len(t, []rune(h.Description), 303)
		assert.Len(t, h.Facilities, 10)
	})

	t.Run("missing fields get placeholders", func(t *testing.T) {
		h := Hotel{Name: "  "}
		h.Tidy()

		assert.Equal(t, "Unknown Hotel", h.Name)
		assert.Equal(t, "Address not available", h.Address)
		assert.Equal(t, "Not Rated", h.Rating)
	})
}
