package transcript

import (
	"strings"
	"sync"
)

// Draft accumulates the body of a note being dictated.
type Draft struct {
	mu      sync.RWMutex
	body    strings.Builder
	interim string
	lastSeq uint64
	finals  int
}

// NewDraft starts a draft from an existing body.
func NewDraft(initial string) *Draft {
	d := &Draft{}
	d.body.WriteString(initial)
	return d
}

// Apply folds one fragment into the draft and reports whether it changed
// anything. A final fragment clears the preview and is appended. Only a
// sequenced final is appended exactly once; an unsequenced one is appended
// on every delivery. An interim fragment only replaces the preview.
func (d *Draft) Apply(f Fragment) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !f.Final {
		d.interim = f.Text
		return true
	}
	if f.Seq != 0 {
		if f.Seq <= d.lastSeq {
			return false
		}
		d.lastSeq = f.Seq
	}
	d.body.WriteString(f.Text)
	d.interim = ""
	d.finals++
	return true
}

// Consume applies fragments in arrival order until ch is closed.
func (d *Draft) Consume(ch <-chan Fragment) {
	for f := range ch {
		d.Apply(f)
	}
}

// State returns body, interim text and final count in one consistent read.
func (d *Draft) State() (body, interim string, finals int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.body.String(), d.interim, d.finals
}
