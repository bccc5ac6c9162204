package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{"pending", "paid"},
		{"pending", "cancelled"},
		{"paid", "shipped"},
		{"paid", "cancelled"},
		{"paid", "refunded"},
		{"shipped", "completed"},
		{"shipped", "refunded"},
		{"completed", "refunded"},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	denied := []struct{ from, to string }{
		{"pending", "shipped"},
		{"pending", "completed"},
		{"pending", "refunded"},
		{"paid", "pending"},
		{"shipped", "paid"},
		{"cancelled", "paid"},
		{"cancelled", "pending"},
		{"refunded", "paid"},
		{"completed", "shipped"},
		{"paid", "paid"},
		{"unknown", "paid"},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}
