package questions

import "strings"

// safetyKeywords are the crisis-indicator substrings checked against all
// accumulated answer text.
var safetyKeywords = []string{
	"suicide", "suicidal", "kill myself", "end my life", "want to die",
	"self-harm", "self harm", "cutting myself", "hurt myself",
	"don't want to live", "better off dead", "no reason to live",
}

// ContainsCrisisSignal reports whether text contains any crisis-indicator
// keyword, case-insensitively. Empty input is never a signal.
func ContainsCrisisSignal(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, keyword := range safetyKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// CrisisResource is one entry in the crisis support list.
type CrisisResource struct {
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Description string `json:"description"`
}

// CrisisResources is the payload served alongside a crisis redirect.
type CrisisResourcesPayload struct {
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Resources []CrisisResource `json:"resources"`
}

var CrisisResources = CrisisResourcesPayload{
	Title:   "You deserve real support right now",
	Message: "What you're going through sounds really difficult. This tool isn't equipped to help with what you're describing, but there are people who can.",
	Resources: []CrisisResource{
		{Name: "Find a Helpline (International)", URL: "https://findahelpline.com/", Description: "Find crisis support in your country"},
		{Name: "US: National Suicide Prevention Lifeline", Phone: "988", Description: "Call or text 988"},
		{Name: "US: Crisis Text Line", Phone: "Text HOME to 741741", Description: "Free 24/7 support"},
		{Name: "NZ: Need to Talk?", Phone: "1737", Description: "Free call or text, anytime"},
		{Name: "UK: Samaritans", Phone: "116 123", Description: "Free to call, 24 hours"},
		{Name: "AU: Lifeline", Phone: "13 11 14", Description: "24 hour crisis support"},
	},
}
