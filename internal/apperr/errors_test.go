package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNil(t *testing.T) {
	assert.NoError(t, New(KindFetch, "fetch", nil))
}

func TestKindOfWrapped(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("scrape root: %w", New(KindFetch, "fetch https://ameco.et", base))

	assert.Equal(t, KindFetch, KindOf(err))
	assert.True(t, Is(err, KindFetch))
	assert.False(t, Is(err, KindStore))
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestPolicyTable(t *testing.T) {
	tests := map[Kind]Policy{
		KindFetch:      PolicyFallback,
		KindExtraction: PolicySkipItem,
		KindCache:      PolicyIgnore,
		KindStore:      PolicyFallback,
		KindValidation: PolicySurface,
		KindInternal:   PolicySurface,
		Kind("other"):  PolicySurface,
	}

	for kind, want := range tests {
		assert.Equal(t, want, PolicyFor(kind), "kind %s", kind)
	}
}

func TestNewfMessage(t *testing.T) {
	err := Newf(KindValidation, "", "message must be a non-empty string")
	require.Error(t, err)
	assert.Equal(t, "message must be a non-empty string", err.Error())
}
