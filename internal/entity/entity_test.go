package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("Pending").Valid())
	assert.False(t, Status("").Valid())
}

func TestIsVenue(t *testing.T) {
	assert.Len(t, Venues, 10)
	assert.True(t, IsVenue("Brin Thamrin"))
	assert.False(t, IsVenue("brin thamrin"))
	assert.False(t, IsVenue(""))
}
