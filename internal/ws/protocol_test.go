package ws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEventName(t *testing.T) {
	valid := []string{"message", "score.update", "game:state", "player_moved", "round-1", "A"}
	for _, name := range valid {
		assert.NoError(t, validateEventName(name), name)
	}

	invalid := []string{
		"",
		"1starts-with-digit",
		"_underscore-first",
		"has space",
		"has/slash",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		assert.ErrorIs(t, validateEventName(name), errEventNameInvalid, name)
	}
}

func TestValidateEventNameReserved(t *testing.T) {
	for name := range reservedEvents {
		assert.ErrorIs(t, validateEventName(name), errEventNameReserved, name)
	}
}

func TestValidateEventNameMaxLength(t *testing.T) {
	assert.NoError(t, validateEventName(strings.Repeat("a", 64)))
	assert.Error(t, validateEventName(strings.Repeat("a", 65)))
}
