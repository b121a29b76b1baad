package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponder_Respond(t *testing.T) {
	r := NewDefaultResponder()
	rules := DefaultRules()
	reply := func(keyword string) string {
		for _, rule := range rules {
			if rule.Keyword == keyword {
				return rule.Response
			}
		}
		t.Fatalf("no rule for %q", keyword)
		return ""
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "fever", input: "I have a fever", want: reply("fever")},
		{name: "case insensitive", input: "HEADACHE since morning", want: reply("headache")},
		{name: "first rule wins over later keyword", input: "fever and headache", want: reply("fever")},
		{name: "cough listed before cold", input: "cold and cough", want: reply("cough")},
		{name: "substring match inside word", input: "what is this", want: reply("hi")},
		{name: "hi inside this beats emergency", input: "this is an emergency", want: reply("hi")},
		{name: "multi word keyword", input: "my sore throat hurts", want: reply("sore throat")},
		{name: "no keyword", input: "my back aches", want: DefaultReply},
		{name: "empty", input: "", want: DefaultReply},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Respond(tt.input))
		})
	}
}

func TestResponder_Deterministic(t *testing.T) {
	r := NewDefaultResponder()
	first := r.Respond("nausea after lunch")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.Respond("nausea after lunch"))
	}
}

func TestNewResponder_CustomTable(t *testing.T) {
	r := NewResponder([]Rule{{Keyword: "RASH", Response: "rash reply"}}, "")

	assert.Equal(t, "rash reply", r.Respond("a red rash"))
	assert.Equal(t, DefaultReply, r.Respond("anything else"))
}
