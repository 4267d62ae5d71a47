// Package events defines the observable event stream a NAUX run produces:
// say/ask/fetch/ui/text/button/log, emitted identically by the
// tree-walking interpreter and the bytecode VM.
package events

import "naux/internal/value"

// Kind identifies which action produced an Event.
type Kind int

const (
	Say Kind = iota
	Ask
	Fetch
	Ui
	Text
	Button
	Log
)

func (k Kind) String() string {
	switch k {
	case Say:
		return "say"
	case Ask:
		return "ask"
	case Fetch:
		return "fetch"
	case Ui:
		return "ui"
	case Text:
		return "text"
	case Button:
		return "button"
	case Log:
		return "log"
	default:
		return "?"
	}
}

// UiProp is one rendered `key: value` property of a Ui event.
type UiProp struct {
	Name  string
	Value value.Value
}

// Event is one entry of the run's observable event stream.
type Event struct {
	Kind Kind

	// Say, Fetch, Text, Button, Log carry their payload here.
	Payload string

	// Ask carries both the prompt sent to the oracle and its answer.
	Prompt string
	Answer string

	// Ui carries a widget kind plus its properties.
	UiKind  string
	UiProps []UiProp
}

// NewSay builds a say event.
func NewSay(text string) Event { return Event{Kind: Say, Payload: text} }

// NewAsk builds an ask event with its oracle answer already resolved.
func NewAsk(prompt, answer string) Event { return Event{Kind: Ask, Prompt: prompt, Answer: answer} }

// NewFetch builds a fetch event.
func NewFetch(target string) Event { return Event{Kind: Fetch, Payload: target} }

// NewText builds a text event.
func NewText(text string) Event { return Event{Kind: Text, Payload: text} }

// NewButton builds a button event.
func NewButton(label string) Event { return Event{Kind: Button, Payload: label} }

// NewLog builds a log event.
func NewLog(msg string) Event { return Event{Kind: Log, Payload: msg} }

// NewUi builds a ui event.
func NewUi(kind string, props []UiProp) Event { return Event{Kind: Ui, UiKind: kind, UiProps: props} }
