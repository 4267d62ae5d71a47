package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"naux/internal/value"
)

func TestEventConstructors(t *testing.T) {
	assert.Equal(t, Event{Kind: Say, Payload: "hi"}, NewSay("hi"))
	assert.Equal(t, Event{Kind: Ask, Prompt: "p", Answer: "a"}, NewAsk("p", "a"))
	assert.Equal(t, Event{Kind: Fetch, Payload: "url"}, NewFetch("url"))
	assert.Equal(t, Event{Kind: Text, Payload: "t"}, NewText("t"))
	assert.Equal(t, Event{Kind: Button, Payload: "ok"}, NewButton("ok"))
	assert.Equal(t, Event{Kind: Log, Payload: "m"}, NewLog("m"))

	props := []UiProp{{Name: "label", Value: value.NewInt(1)}}
	ui := NewUi("button", props)
	assert.Equal(t, Ui, ui.Kind)
	assert.Equal(t, "button", ui.UiKind)
	assert.Equal(t, props, ui.UiProps)
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		Say: "say", Ask: "ask", Fetch: "fetch", Ui: "ui",
		Text: "text", Button: "button", Log: "log",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
	assert.Equal(t, "?", Kind(999).String())
}
