package log2

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing(t *testing.T) {
	t.Parallel()
	r := NewRing(3)
	assert.Empty(t, r.Lines())
	_, _ = r.Write([]byte("one\ntw"))
	assert.Equal(t, []string{"one"}, r.Lines())
	assert.Equal(t, uint64(1), r.Version())
	_, _ = r.Write([]byte("o\nthree\nfour\n"))
	assert.Equal(t, []string{"two", "three", "four"}, r.Lines())
	assert.Equal(t, uint64(4), r.Version())
}

func TestRingLog(t *testing.T) {
	t.Parallel()
	r := NewRing(2)
	log := NewWriter(r, LDebug)
	log.SetFlags(0)
	for i := 1; i <= 3; i++ {
		log.Infof("line %d", i)
	}
	assert.Equal(t, []string{"line 2", "line 3"}, r.Lines())
	log.Debugf("%s", fmt.Sprint("x"))
	assert.Equal(t, []string{"line 3", "debug: x"}, r.Lines())
}

func TestRingResize(t *testing.T) {
	t.Parallel()
	r := NewRing(4)
	_, _ = r.Write([]byte("a\nb\nc\n"))
	r.Resize(2)
	assert.Equal(t, []string{"b", "c"}, r.Lines())
	_, _ = r.Write([]byte("d\n"))
	assert.Equal(t, []string{"c", "d"}, r.Lines())
	r.Resize(5)
	assert.Equal(t, []string{"c", "d"}, r.Lines())
	_, _ = r.Write([]byte("e\n"))
	assert.Equal(t, []string{"c", "d", "e"}, r.Lines())
}
