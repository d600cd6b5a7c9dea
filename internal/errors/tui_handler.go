package errors

import (
	"sync"
	"time"
)

// maxMessages bounds the feed kept by a TUIHandler.
const maxMessages = 100

// Message is one entry of the TUI status bar feed.
type Message struct {
	Text  string
	Level Level
	At    time.Time
}

// TUIHandler keeps messages for the status bar instead of printing them,
// since terminal output would tear the alternate screen.
type TUIHandler struct {
	mu     sync.RWMutex
	feed   []Message
	notify func(Message)
	now    func() time.Time
}

// NewTUIHandler returns a handler that calls notify, when set, for every
// message it receives.
func NewTUIHandler(notify func(Message)) *TUIHandler {
	return &TUIHandler{notify: notify, now: time.Now}
}

func (h *TUIHandler) Error(msg string)   { h.push(LevelError, msg) }
func (h *TUIHandler) Warning(msg string) { h.push(LevelWarning, msg) }
func (h *TUIHandler) Info(msg string)    { h.push(LevelInfo, msg) }
func (h *TUIHandler) Success(msg string) { h.push(LevelSuccess, msg) }

func (h *TUIHandler) push(level Level, text string) {
	msg := Message{Text: text, Level: level, At: h.now()}

	h.mu.Lock()
	h.feed = append(h.feed, msg)
	if over := len(h.feed) - maxMessages; over > 0 {
		h.feed = append([]Message(nil), h.feed[over:]...)
	}
	notify := h.notify
	h.mu.Unlock()

	// notify may read the handler, so it runs unlocked.
	if notify != nil {
		notify(msg)
	}
}

// Latest returns the newest message.
func (h *TUIHandler) Latest() (Message, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.feed) == 0 {
		return Message{}, false
	}
	return h.feed[len(h.feed)-1], true
}

// Messages returns a copy of the feed, oldest first.
func (h *TUIHandler) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Message(nil), h.feed...)
}

// Clear empties the feed.
func (h *TUIHandler) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.feed = nil
}
