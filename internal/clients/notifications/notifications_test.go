package notifications

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnatchMessage(t *testing.T) {
	title, body := snatchMessage("[Grp] Show - 05 [720p]", "Fanzub", "blackhole")
	assert.Equal(t, "Snatched: [Grp] Show - 05 [720p]", title)
	assert.Equal(t, "Found on Fanzub, sent via blackhole", body)
}

func TestFailureMessage(t *testing.T) {
	title, body := failureMessage("Show S01E01", errors.New("transmission unreachable"))
	assert.Equal(t, "Snatch failed: Show S01E01", title)
	assert.Equal(t, "transmission unreachable", body)
}
