package playerjs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join("testdata", name)
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", p, err)
	}
	return string(b)
}

func TestCipherStepsApply(t *testing.T) {
	steps := CipherSteps{
		{Kind: CipherStepReverse},
		{Kind: CipherStepSplice, Param: 2},
		{Kind: CipherStepSwap, Param: 1},
	}
	got := steps.Apply("abcdef")
	// reverse -> "fedcba", splice(2) -> "dcba", swap(1) -> "cdba"
	require.Equal(t, "cdba", got)
}

func TestCipherStepsApply_Empty(t *testing.T) {
	require.Equal(t, "", CipherSteps{}.Apply(""))
}

func TestSpliceBytes_BeyondLength(t *testing.T) {
	got := spliceBytes([]byte("abc"), 10)
	require.Empty(t, got)
}

func TestSpliceBytes_Negative(t *testing.T) {
	got := spliceBytes([]byte("abc"), -5)
	require.Equal(t, "abc", string(got))
}

func TestSwapBytes_IndexModLen(t *testing.T) {
	got := swapBytes([]byte("abcd"), 5) // 5 mod 4 = 1
	require.Equal(t, "bacd", string(got))
}

func TestSwapBytes_ZeroLength(t *testing.T) {
	got := swapBytes([]byte(""), 3)
	require.Empty(t, got)
}

func TestReverseBytes(t *testing.T) {
	require.Equal(t, "dcba", string(reverseBytes([]byte("abcd"))))
}

func TestExtractCipherSteps_Memoizes(t *testing.T) {
	js := loadFixture(t, "synthetic_basejs_fixture.js")

	first, err := ExtractCipherSteps([]byte(js))
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := ExtractCipherSteps([]byte(js))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestExtractCipherSteps_FromFixture(t *testing.T) {
	js := loadFixture(t, "synthetic_basejs_fixture.js")

	steps, err := ExtractCipherSteps([]byte(js))
	require.NoError(t, err)
	require.Equal(t, "defcb", steps.Apply("abcdef"))
}
