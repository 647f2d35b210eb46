package compliance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateExactMatch(t *testing.T) {
	result, err := Evaluate(8, 8)
	require.NoError(t, err)
	require.Equal(t, VerdictPass, result.Verdict)
	require.Contains(t, result.Message, "matches")
}

func TestEvaluateDeficit(t *testing.T) {
	result, err := Evaluate(6, 8)
	require.NoError(t, err)
	require.Equal(t, VerdictFail, result.Verdict)
	require.Contains(t, result.Message, "2 bars short")
}

func TestEvaluateSurplus(t *testing.T) {
	result, err := Evaluate(10, 8)
	require.NoError(t, err)
	require.Equal(t, VerdictWarning, result.Verdict)
	require.Contains(t, result.Message, "by 2 bars")
}

func TestEvaluateRequiresDesignTotal(t *testing.T) {
	_, err := Evaluate(0, 0)
	require.Error(t, err)
	_, err = Evaluate(5, -1)
	require.Error(t, err)
}
