// Package notify is the single output collaborator shared by the executor
// and the shell. Core code never writes to a terminal directly.
package notify

import (
	"fmt"
	"time"

	"github.com/nathoo/navishell/types"
)

// Emitter receives user-visible messages.
type Emitter interface {
	Emit(msg types.Message)
}

// Func adapts a function to an Emitter.
type Func func(msg types.Message)

// Emit calls f(msg).
func (f Func) Emit(msg types.Message) { f(msg) }

// Discard drops every message.
var Discard Emitter = Func(func(types.Message) {})

// Recorder collects messages in order.
type Recorder struct {
	Messages []types.Message
}

// Emit appends msg.
func (r *Recorder) Emit(msg types.Message) {
	r.Messages = append(r.Messages, msg)
}

// Texts returns the text of every recorded message.
func (r *Recorder) Texts() []string {
	out := make([]string, len(r.Messages))
	for i, m := range r.Messages {
		out[i] = m.Text
	}
	return out
}

// Reset clears recorded messages.
func (r *Recorder) Reset() {
	r.Messages = nil
}

// Text emits a plain text line.
func Text(e Emitter, format string, args ...any) {
	e.Emit(types.Message{Kind: types.MsgText, Text: sprintf(format, args)})
}

// Notice emits a notice with an optional display delay.
func Notice(e Emitter, delay time.Duration, format string, args ...any) {
	e.Emit(types.Message{Kind: types.MsgNotice, Text: sprintf(format, args), Delay: delay})
}

// Error emits an error line.
func Error(e Emitter, format string, args ...any) {
	e.Emit(types.Message{Kind: types.MsgError, Text: sprintf(format, args)})
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
