package playerjs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractSignatureTimestamp_Found(t *testing.T) {
	js := []byte(`var a = {signatureTimestamp: 20494};`)
	require.Equal(t, 20494, ExtractSignatureTimestamp(js))
}

func TestExtractSignatureTimestamp_ShortFormKey(t *testing.T) {
	js := []byte(`cfg.sts:20601,other:1`)
	require.Equal(t, 20601, ExtractSignatureTimestamp(js))
}

func TestExtractSignatureTimestamp_FallsBackWhenMissing(t *testing.T) {
	require.Equal(t, DefaultSignatureTimestamp, ExtractSignatureTimestamp([]byte(`no sts here`)))
}
