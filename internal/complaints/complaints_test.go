package complaints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosable(t *testing.T) {
	assert.True(t, closable("open"))
	assert.True(t, closable("in_review"))

	for _, status := range []string{"resolved", "dismissed", "", "unknown"} {
		assert.False(t, closable(status), "status %q must be final", status)
	}
}
