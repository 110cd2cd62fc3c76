package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderReplacesKnownPlaceholders(t *testing.T) {
	out := Render("Hello {{name}}, your ticket is {{status}}", map[string]string{
		"name":   "Ada",
		"status": "live",
	})
	assert.Equal(t, "Hello Ada, your ticket is live", out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Hello {{name}}, status is {{status}}", map[string]string{
		"name": "Ada",
	})
	assert.Equal(t, "Hello Ada, status is {{status}}", out)
}

func TestRenderRepeatedAndEmpty(t *testing.T) {
	out := Render("{{x}} and {{x}}", map[string]string{"x": "twice"})
	assert.Equal(t, "twice and twice", out)

	assert.Equal(t, "", Render("", map[string]string{"x": "y"}))
	assert.Equal(t, "no placeholders", Render("no placeholders", nil))
}
