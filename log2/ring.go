package log2

import (
	"bytes"
	"sync"
)

// Ring keeps last N complete lines written to it.
// Use with io.MultiWriter to show recent log on screen.
type Ring struct {
	mu      sync.Mutex
	lines   []string
	next    int
	full    bool
	partial []byte
	version uint64
}

func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{lines: make([]string, size)}
}

func (self *Ring) Write(b []byte) (int, error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	rest := b
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			self.partial = append(self.partial, rest...)
			break
		}
		line := string(append(self.partial, rest[:i]...))
		self.partial = self.partial[:0]
		self.push(line)
		rest = rest[i+1:]
	}
	return len(b), nil
}

// Lines returns copy, oldest first.
func (self *Ring) Lines() []string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.linesLocked()
}

func (self *Ring) linesLocked() []string {
	if !self.full {
		return append([]string(nil), self.lines[:self.next]...)
	}
	out := make([]string, 0, len(self.lines))
	out = append(out, self.lines[self.next:]...)
	return append(out, self.lines[:self.next]...)
}

// Version changes on every complete line.
func (self *Ring) Version() uint64 {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.version
}

func (self *Ring) push(line string) {
	self.lines[self.next] = line
	self.next++
	if self.next == len(self.lines) {
		self.next = 0
		self.full = true
	}
	self.version++
}

// Resize keeps newest lines that fit.
func (self *Ring) Resize(size int) {
	if size <= 0 {
		size = 1
	}
	self.mu.Lock()
	defer self.mu.Unlock()
	old := self.linesLocked()
	if len(old) > size {
		old = old[len(old)-size:]
	}
	self.lines = make([]string, size)
	self.next = copy(self.lines, old)
	self.full = self.next == size
	if self.full {
		self.next = 0
	}
	self.version++
}
