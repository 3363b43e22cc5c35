package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	t.Parallel()
	lines := []string{}
	err := ReadLines(strings.NewReader("tap 1 2\n  go Menu \n\nstat"), func(line string) {
		lines = append(lines, line)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tap 1 2", "go Menu", "", "stat"}, lines)
}
