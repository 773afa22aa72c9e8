package questions

// QuickQuestion is a fixed multiple-choice prompt for the free Quick Letter.
type QuickQuestion struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// QuickQuestions is the Quick Letter flow: five questions with pre-written
// options, no payment gate, tone fixed to warm.
var QuickQuestions = []QuickQuestion{
	{
		ID:     "quick-1",
		Prompt: "How are you really feeling right now?",
		Options: []string{
			"Overwhelmed — there's too much going on and I can't keep up",
			"Stuck — I know something needs to change but I don't know what",
			"Lost — I'm not sure who I am or what I want anymore",
			"Tired — I'm exhausted from trying so hard at everything",
		},
	},
	{
		ID:     "quick-2",
		Prompt: "What's been weighing on you most?",
		Options: []string{
			"A relationship that's not working the way I need it to",
			"Work or career that feels meaningless or draining",
			"A decision I've been avoiding making",
			"Feeling disconnected from myself or others",
		},
	},
	{
		ID:     "quick-3",
		Prompt: "What do you think you need right now?",
		Options: []string{
			"Permission to slow down and stop pushing so hard",
			"Clarity about what I actually want",
			"Courage to make a change I've been avoiding",
			"To feel seen and understood",
		},
	},
	{
		ID:     "quick-4",
		Prompt: "What's something you've been avoiding?",
		Options: []string{
			"A hard conversation I need to have",
			"Admitting that something isn't working",
			"Taking care of myself the way I should",
			"Making a decision that will disappoint someone",
		},
	},
	{
		ID:     "quick-5",
		Prompt: "What would help you move forward?",
		Options: []string{
			"Letting go of something that's no longer serving me",
			"Setting a boundary I've been afraid to set",
			"Being honest with myself about what I really want",
			"Taking one small step instead of trying to fix everything",
		},
	},
}
