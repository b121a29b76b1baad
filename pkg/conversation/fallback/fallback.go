package fallback

import "strings"

// Rule maps a keyword to a canned reply.
type Rule struct {
	Keyword  string
	Response string
}

const DefaultReply = "I understand you're seeking health advice. Currently, I'm experiencing technical difficulties with my AI service. Please try again in a few moments, or describe your symptoms clearly and I'll provide general guidance based on common remedies."

// DefaultRules is the canned table used while the generation backend is down.
// Order matters: the first keyword found anywhere in the text wins.
func DefaultRules() []Rule {
	return []Rule{
		{"hello", "Hello! I'm HealthAssist. How can I help you today?"},
		{"hi", "Hi there! What health concern would you like to discuss?"},
		{"help", "I can provide home remedies and health advice. Please describe your symptoms."},
		{"fever", "For fever, try resting, drinking plenty of fluids, and taking acetaminophen or ibuprofen as directed. If fever persists above 103°F (39.4°C) or lasts more than 3 days, please consult a doctor."},
		{"headache", "For headaches, try resting in a quiet dark room, applying a cool compress, and staying hydrated. Over-the-counter pain relievers may help. If headaches are severe or frequent, consult a doctor."},
		{"cough", "For cough, try honey in warm tea, staying hydrated, and using a humidifier. If cough persists for more than a week or is accompanied by fever, see a doctor."},
		{"cold", "For cold symptoms, rest, drink fluids, use saline nasal spray, and consider over-the-counter cold remedies. If symptoms worsen or last more than 10 days, see a doctor."},
		{"sore throat", "For sore throat, try warm salt water gargles, honey lemon tea, and throat lozenges. If severe or accompanied by fever, see a doctor."},
		{"nausea", "For nausea, try ginger tea, small bland meals, and staying hydrated with clear fluids. If persistent or severe, consult a doctor."},
		{"emergency", "⚠️ This may be a medical emergency. Please call emergency services or go to the nearest hospital immediately."},
	}
}

// Responder is a deterministic keyword matcher. Matching is plain substring
// search on the lower-cased text, so "hi" also fires inside "this" or "chills".
type Responder struct {
	rules        []Rule
	defaultReply string
}

func NewResponder(rules []Rule, defaultReply string) *Responder {
	normalized := make([]Rule, len(rules))
	for i, r := range rules {
		normalized[i] = Rule{Keyword: strings.ToLower(r.Keyword), Response: r.Response}
	}
	if defaultReply == "" {
		defaultReply = DefaultReply
	}
	return &Responder{rules: normalized, defaultReply: defaultReply}
}

func NewDefaultResponder() *Responder {
	return NewResponder(DefaultRules(), DefaultReply)
}

func (r *Responder) Respond(userText string) string {
	text := strings.ToLower(userText)
	for _, rule := range r.rules {
		if rule.Keyword != "" && strings.Contains(text, rule.Keyword) {
			return rule.Response
		}
	}
	return r.defaultReply
}
