package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRuleList(t *testing.T) {
	rules := ParseRuleList("Boss@Corp.Example:50, peer@corp.example=5 ,@news.example:-10,plain@x.example")
	assert.Equal(t, map[string]float64{
		"boss@corp.example": 50,
		"peer@corp.example": 5,
		"news.example":      -10,
		"plain@x.example":   30,
	}, rules)
}

func TestParseRuleListSkipsBadEntries(t *testing.T) {
	rules := ParseRuleList("good@x.example:7,bad@x.example:seven, ,:3")
	assert.Equal(t, map[string]float64{"good@x.example": 7}, rules)
}

func TestParseRuleListEmpty(t *testing.T) {
	assert.Empty(t, ParseRuleList(""))
}

func TestApplyImportanceOverrides(t *testing.T) {
	w := DefaultWeights()
	w.ApplyImportanceOverrides(`{"High": 55, "low": 0}`)
	assert.Equal(t, float64(55), w.Importance["high"])
	assert.Equal(t, float64(0), w.Importance["low"])
	assert.Equal(t, float64(10), w.Importance["normal"])

	// Invalid JSON leaves the table untouched.
	w.ApplyImportanceOverrides(`{"high": `)
	assert.Equal(t, float64(55), w.Importance["high"])
}

func TestDefaultWeights(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, float64(40), w.Importance["high"])
	assert.Equal(t, float64(-5), w.Importance["low"])
	assert.Equal(t, 24*time.Hour, w.DueSoonWindow)
}
