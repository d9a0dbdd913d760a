package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteHonoursGuard(t *testing.T) {
	ran, allow := 0, false
	c := New(func() { ran++ }, func() bool { return allow })

	assert.False(t, c.Allowed())
	assert.False(t, c.Execute())
	assert.Equal(t, 0, ran)

	allow = true
	assert.True(t, c.Execute())
	assert.Equal(t, 1, ran)
}

func TestNilGuardAlwaysAllows(t *testing.T) {
	ran := false
	c := Command{Run: func() { ran = true }}

	assert.True(t, c.Allowed())
	assert.True(t, c.Execute())
	assert.True(t, ran)
}

func TestZeroCommandDoesNothing(t *testing.T) {
	assert.False(t, Command{}.Execute())
}
