package voice

import (
	"strings"
	"sync"
)

// AnswerBuffer is the editable answer text shared by typed input and voice
// input. While locked, for example during a submission, it refuses changes.
type AnswerBuffer struct {
	mu     sync.Mutex
	text   string
	locked bool
}

// NewAnswerBuffer creates an empty buffer.
func NewAnswerBuffer() *AnswerBuffer {
	return &AnswerBuffer{}
}

// String returns the current text.
func (b *AnswerBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Set replaces the text. It reports false when the buffer is locked.
func (b *AnswerBuffer) Set(text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locked {
		return false
	}
	b.text = text
	return true
}

// Append adds recognised text, separated by a single space from existing text.
// It reports false when the buffer is locked or text is blank.
func (b *AnswerBuffer) Append(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.locked {
		return false
	}
	if b.text == "" {
		b.text = text
	} else {
		b.text += " " + text
	}
	return true
}

// Clear empties the text unless locked.
func (b *AnswerBuffer) Clear() bool {
	return b.Set("")
}

// Lock freezes the buffer and returns its text.
func (b *AnswerBuffer) Lock() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.locked = true
	return b.text
}

// Unlock allows changes again.
func (b *AnswerBuffer) Unlock() {
	b.mu.Lock()
	b.locked = false
	b.mu.Unlock()
}

// Locked reports whether the buffer refuses changes.
func (b *AnswerBuffer) Locked() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.locked
}

// Reset unlocks and empties the buffer.
func (b *AnswerBuffer) Reset() {
	b.mu.Lock()
	b.text = ""
	b.locked = false
	b.mu.Unlock()
}
