package payouts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableBalance(t *testing.T) {
	assert.Equal(t, int64(10000), availableBalance(10000, 0))
	assert.Equal(t, int64(2500), availableBalance(10000, 7500))
	assert.Equal(t, int64(0), availableBalance(10000, 10000), "fully committed leaves nothing to withdraw")
	assert.Equal(t, int64(-500), availableBalance(10000, 10500), "over-commitment shows as negative")
}
