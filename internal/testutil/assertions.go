// Package testutil holds assertions shared by the package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/statcalc/internal/stat"
)

// RequireValue fails unless err is nil and got is the single value want.
func RequireValue(t testing.TB, want float64, got *stat.NodeValue, err error) {
	t.Helper()

	require.NoError(t, err)
	require.NotNil(t, got, "expected %g, got absent value", want)
	AssertValue(t, want, got)
}

// AssertValue checks both components of got against want within rounding.
func AssertValue(t testing.TB, want float64, got *stat.NodeValue) {
	t.Helper()

	if !assert.NotNil(t, got, "expected %g, got absent value", want) {
		return
	}
	assert.InDelta(t, want, got.Value, 1e-9, "value")
	assert.InDelta(t, want, got.Max, 1e-9, "max")
}

// RequireAbsent fails unless err is nil and got is absent.
func RequireAbsent(t testing.TB, got *stat.NodeValue, err error) {
	t.Helper()

	require.NoError(t, err)
	assert.Nil(t, got, "expected absent value, got %v", got)
}

// Counter counts notifications of a subscription.
type Counter struct {
	n int
}

// Inc is the subscription callback.
func (c *Counter) Inc() { c.n++ }

// Count returns the number of notifications so far.
func (c *Counter) Count() int { return c.n }

// Reset forgets the notifications so far.
func (c *Counter) Reset() { c.n = 0 }
