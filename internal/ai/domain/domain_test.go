package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanModelJSONStripsFences(t *testing.T) {
	raw := "```json\n{\"score\": 85}\n```"
	assert.Equal(t, `{"score": 85}`, CleanModelJSON(raw))
}

func TestCleanModelJSONExtractsObjectFromProse(t *testing.T) {
	raw := "Sure! Here is the result:\n{\"products\": []}\nLet me know if you need anything else."
	assert.Equal(t, `{"products": []}`, CleanModelJSON(raw))
}

func TestCleanModelJSONPassesThroughPlainObject(t *testing.T) {
	assert.Equal(t, `{"ok":true}`, CleanModelJSON("  {\"ok\":true}  "))
}

func TestCleanModelJSONLeavesNonJSONAlone(t *testing.T) {
	assert.Equal(t, "no object here", CleanModelJSON("no object here"))
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]error{
		401: ErrInvalidKey,
		403: ErrInvalidKey,
		404: ErrModelNotFound,
		429: ErrQuotaExceeded,
		500: ErrUnavailable,
		502: ErrUnavailable,
		418: ErrUnavailable,
	}
	for status, want := range cases {
		require.ErrorIs(t, ClassifyStatus(status), want, "status %d", status)
	}
}
