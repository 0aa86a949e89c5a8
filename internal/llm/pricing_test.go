package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCostResolvesFriendlyNames(t *testing.T) {
	c := LookupCost("claude-sonnet")
	require.NotNil(t, c)
	assert.Equal(t, *LookupCost("claude-sonnet-4-5-20250929"), *c)

	assert.Nil(t, LookupCost("no-such-model"))
}

func TestEstimate(t *testing.T) {
	text := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	assert.InDelta(t, 0.018, text.Estimate(4, 1_000, 1_000), 1e-9)

	img := *LookupCost("gemini-2.5-flash-image")
	assert.InDelta(t, 2*0.039, img.Estimate(2, 0, 5_000), 1e-9, "image output tokens are not billed")
}
