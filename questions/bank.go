// Package questions holds the static interview question bank and the
// selection and safety-scan logic over it.
package questions

import "github.com/sturner103/letter-to-you/models"

// MaxGeneralQuestions caps the filtered general pool per session.
const MaxGeneralQuestions = 10

// Modes are the general reflection categories.
var Modes = []models.Mode{
	{ID: "general", Name: "General Reflection", Icon: "◎", Description: "A broad exploration of where you are right now"},
	{ID: "relationships", Name: "Relationship & Connection", Icon: "∞", Description: "Patterns in how you connect with others"},
	{ID: "career", Name: "Career & Meaning", Icon: "◈", Description: "Work, purpose, and what you're building"},
	{ID: "transition", Name: "Transition / Crossroads", Icon: "⊕", Description: "When you're between chapters"},
	{ID: "original", Name: "The Original", Icon: "✦", Description: "The deep questions that started it all"},
}

// LifeEventModes are templates for specific situations, each with a fixed
// hand-authored question list.
var LifeEventModes = []models.Mode{
	{ID: "breakup", Name: "After a Breakup", Icon: "◇", Description: "Processing the end of a relationship", LifeEvent: true},
	{ID: "newbeginning", Name: "New Beginning", Icon: "↗", Description: "Starting a new job, city, or chapter", LifeEvent: true},
	{ID: "grief", Name: "Processing Grief", Icon: "○", Description: "Honoring loss and finding your way forward", LifeEvent: true},
	{ID: "newparent", Name: "New Parent", Icon: "✧", Description: "Navigating the identity shift of parenthood", LifeEvent: true},
	{ID: "careercrossroads", Name: "Career Crossroads", Icon: "⊗", Description: "Figuring out your next professional move", LifeEvent: true},
	{ID: "milestone", Name: "Milestone Birthday", Icon: "◐", Description: "Reflecting on a new decade of life", LifeEvent: true},
}

// ModeName resolves a mode id to its display name. Unknown ids fall back to
// the general reflection name, matching the client's behavior.
func ModeName(modeID string) string {
	for _, m := range Modes {
		if m.ID == modeID {
			return m.Name
		}
	}
	for _, m := range LifeEventModes {
		if m.ID == modeID {
			return m.Name
		}
	}
	if modeID == "quick" {
		return "Quick Reflection"
	}
	return "General Reflection"
}

// KnownMode reports whether modeID names a selectable interview mode. The
// "original" mode resolves through the life-event table below even though it
// is listed as a general category.
func KnownMode(modeID string) bool {
	if _, ok := lifeEventQuestions[modeID]; ok {
		return true
	}
	for _, m := range Modes {
		if m.ID == modeID {
			return true
		}
	}
	return false
}

// lifeEventQuestions maps each fixed-list mode to its authored questions.
var lifeEventQuestions = map[string][]models.Question{
	"breakup": {
		{ID: "breakup-1", Section: "processing", SectionName: "Processing", Prompt: "How are you really doing right now—not the version you tell others?"},
		{ID: "breakup-2", Section: "reflection", SectionName: "Looking Back", Prompt: "What did this relationship teach you about yourself?"},
		{ID: "breakup-3", Section: "identity", SectionName: "Identity", Prompt: "What parts of yourself did you lose or put aside in this relationship?"},
		{ID: "breakup-4", Section: "healing", SectionName: "Healing", Prompt: "What do you need to forgive—in them, or in yourself?"},
		{ID: "breakup-5", Section: "forward", SectionName: "Moving Forward", Prompt: "What do you want your next relationship (with yourself or someone else) to look like?"},
		{ID: "breakup-6", Section: "closing", SectionName: "Closing", Prompt: "What would you tell yourself six months from now, looking back at this moment?"},
	},
	"newbeginning": {
		{ID: "newbeginning-1", Section: "present", SectionName: "Right Now", Prompt: "What's the mix of excitement and fear you're feeling about this change?"},
		{ID: "newbeginning-2", Section: "leaving", SectionName: "What You're Leaving", Prompt: "What are you grateful to leave behind? What will you miss?"},
		{ID: "newbeginning-3", Section: "hopes", SectionName: "Hopes", Prompt: "In your most optimistic vision, what does this new chapter look like?"},
		{ID: "newbeginning-4", Section: "fears", SectionName: "Fears", Prompt: "What's the thing you're most afraid won't work out?"},
		{ID: "newbeginning-5", Section: "identity", SectionName: "Identity", Prompt: "Who do you want to become in this new chapter?"},
		{ID: "newbeginning-6", Section: "closing", SectionName: "Closing", Prompt: "What permission do you need to give yourself right now?"},
	},
	"grief": {
		{ID: "grief-1", Section: "honoring", SectionName: "Honoring", Prompt: "Tell me about what or who you've lost. What do you want me to know about them?"},
		{ID: "grief-2", Section: "feeling", SectionName: "Feeling", Prompt: "How is the grief showing up in your daily life right now?"},
		{ID: "grief-3", Section: "unsaid", SectionName: "Unsaid", Prompt: "What do you wish you could say to them, or about them, that you haven't?"},
		{ID: "grief-4", Section: "carrying", SectionName: "Carrying Forward", Prompt: "What part of them or what they meant to you do you want to carry forward?"},
		{ID: "grief-5", Section: "support", SectionName: "Support", Prompt: "What kind of support do you need right now that you're not getting?"},
		{ID: "grief-6", Section: "closing", SectionName: "Closing", Prompt: "What would it mean to honor your grief while still moving forward?"},
	},
	"newparent": {
		{ID: "newparent-1", Section: "real", SectionName: "The Real Version", Prompt: "How is parenthood different from what you expected—honestly?"},
		{ID: "newparent-2", Section: "identity", SectionName: "Identity", Prompt: "What parts of your old self do you miss? What new parts are emerging?"},
		{ID: "newparent-3", Section: "overwhelm", SectionName: "The Hard Parts", Prompt: "What's the thing you're not supposed to say out loud about being a parent?"},
		{ID: "newparent-4", Section: "joy", SectionName: "The Joy", Prompt: "What moment recently made you feel like you're doing okay at this?"},
		{ID: "newparent-5", Section: "values", SectionName: "Values", Prompt: "What kind of parent do you want to be? What matters most to you?"},
		{ID: "newparent-6", Section: "closing", SectionName: "Closing", Prompt: "What do you need to hear right now that no one is telling you?"},
	},
	"careercrossroads": {
		{ID: "career-1", Section: "stuck", SectionName: "Where You Are", Prompt: "What's not working about your current work situation?"},
		{ID: "career-2", Section: "want", SectionName: "What You Want", Prompt: "If money and judgment weren't factors, what would you actually want to do?"},
		{ID: "career-3", Section: "fear", SectionName: "Fears", Prompt: "What's the fear that's keeping you from making a change?"},
		{ID: "career-4", Section: "patterns", SectionName: "Patterns", Prompt: "Have you been here before? What patterns do you notice in your career decisions?"},
		{ID: "career-5", Section: "values", SectionName: "Values", Prompt: "What does meaningful work actually look like for you?"},
		{ID: "career-6", Section: "closing", SectionName: "Closing", Prompt: "What's one small step you could take in the next week toward clarity?"},
	},
	"milestone": {
		{ID: "milestone-1", Section: "reflection", SectionName: "Looking Back", Prompt: "As you look at the decade behind you, what are you most proud of?"},
		{ID: "milestone-2", Section: "lessons", SectionName: "Lessons", Prompt: "What's the most important thing you learned about yourself in your last decade?"},
		{ID: "milestone-3", Section: "regrets", SectionName: "Regrets", Prompt: "Is there anything you wish you'd done differently? What would you tell your younger self?"},
		{ID: "milestone-4", Section: "present", SectionName: "Right Now", Prompt: "How do you feel about where you are in life right now—really?"},
		{ID: "milestone-5", Section: "future", SectionName: "Looking Forward", Prompt: "What do you want the next decade to be about?"},
		{ID: "milestone-6", Section: "closing", SectionName: "Closing", Prompt: "What intention or word do you want to carry into this new chapter?"},
	},
	"original": {
		{ID: "original-1", Section: "depth", SectionName: "Deep Reflection", Prompt: "When in your life have you felt most at peace — not just happy, but deeply, quietly content — and what were the smallest details of that moment that stick with you?"},
		{ID: "original-2", Section: "depth", SectionName: "Deep Reflection", Prompt: "If your unconscious mind could speak to you in plain language — like a voice in a quiet room — what do you think it's been trying to say to you lately that you haven't quite heard?"},
		{ID: "original-3", Section: "depth", SectionName: "Deep Reflection", Prompt: "When do you notice yourself performing — subtly or overtly — rather than simply being? What do you think you're trying to prove in those moments, and to whom?"},
		{ID: "original-4", Section: "depth", SectionName: "Deep Reflection", Prompt: "What's a pattern — in love, work, or friendship — that you keep repeating, even though you know it doesn't serve you? And what fear might be hiding underneath that repetition?"},
		{ID: "original-5", Section: "depth", SectionName: "Deep Reflection", Prompt: "When do you most feel like the child version of yourself — not in a nostalgic way, but in the raw, unprotected, instinctive way — and what emotion usually surfaces in that state?"},
		{ID: "original-6", Section: "depth", SectionName: "Deep Reflection", Prompt: "If someone truly saw all of you — the light, the dark, the contradictions, the things you hide — what do you secretly hope they'd say to you in response?"},
		{ID: "original-7", Section: "depth", SectionName: "Deep Reflection", Prompt: "When you imagine a future where you feel fully at home — in your own skin, in your relationships, in your choices — what are three things that don't exist in that version of your life anymore?"},
		{ID: "original-8", Section: "depth", SectionName: "Deep Reflection", Prompt: "What truth about yourself do you suspect is there, just beneath the surface, but you haven't quite been ready to say out loud yet?"},
		{ID: "original-9", Section: "depth", SectionName: "Deep Reflection", Prompt: "If your heart could write a letter to your mind, what would it say — in just one sentence?"},
		{ID: "original-10", Section: "depth", SectionName: "Deep Reflection", Prompt: "What part of yourself are you most afraid someone else might truly understand — and why would that kind of understanding feel dangerous?"},
	},
}

// pool is the shared general question pool, in authored order. Core
// questions apply to every mode; the rest carry a UseIf mode list.
var pool = []models.Question{
	// Orientation
	{ID: "orientation-1", Section: "orientation", SectionName: "Orientation",
		Prompt:   "What brings you here right now? Not the polished version—the real reason.",
		FollowUp: "If you said the honest sentence you don't usually say out loud, what would it be?",
		Tags:     []string{"identity", "meaning"}, Intensity: 3, Core: true},
	{ID: "orientation-2", Section: "orientation", SectionName: "Orientation",
		Prompt: "What would you most want to be different in 6 months—internally, not externally?",
		Tags:   []string{"meaning", "values"}, Intensity: 2, Core: true},

	// Values + identity
	{ID: "values-1", Section: "values", SectionName: "Values & Identity",
		Prompt:   "When do you feel most like yourself lately? Be specific.",
		FollowUp: "What is present in those moments that's missing elsewhere?",
		Tags:     []string{"identity", "values", "energy"}, Intensity: 2, Core: true},
	{ID: "values-2", Section: "values", SectionName: "Values & Identity",
		Prompt: "What are you doing that looks 'fine' from the outside but feels wrong on the inside?",
		Tags:   []string{"identity", "values"}, Intensity: 3, Core: true},
	{ID: "values-3", Section: "values", SectionName: "Values & Identity",
		Prompt:   "If someone who loves you were being brutally honest, what would they say you've been avoiding?",
		FollowUp: "What do you fear would happen if you stopped avoiding it?",
		Tags:     []string{"fear", "identity"}, Intensity: 4, Core: true},

	// Energy + emotional load
	{ID: "energy-1", Section: "energy", SectionName: "Energy & Load",
		Prompt: "What is quietly draining you right now?",
		Tags:   []string{"energy", "fear"}, Intensity: 2, Core: true},
	{ID: "energy-2", Section: "energy", SectionName: "Energy & Load",
		Prompt:   "What are you carrying that you haven't fully admitted is heavy?",
		FollowUp: "If that weight could speak, what would it ask of you?",
		Tags:     []string{"energy", "grief"}, Intensity: 4, Core: true},
	{ID: "energy-3", Section: "energy", SectionName: "Energy & Load",
		Prompt: "Where is your life asking for fewer obligations and more truth?",
		Tags:   []string{"energy", "values"}, Intensity: 3,
		UseIf: []string{"general", "transition"}},

	// Relationships + connection
	{ID: "relationships-1", Section: "relationships", SectionName: "Relationships & Connection",
		Prompt: "Who do you feel most yourself around—and why?",
		Tags:   []string{"relationships", "identity"}, Intensity: 2,
		UseIf: []string{"general", "relationships"}},
	{ID: "relationships-2", Section: "relationships", SectionName: "Relationships & Connection",
		Prompt: "What relationship dynamic are you tolerating that you wouldn't advise someone else to tolerate?",
		Tags:   []string{"relationships", "values"}, Intensity: 4,
		UseIf: []string{"general", "relationships"}},
	{ID: "relationships-3", Section: "relationships", SectionName: "Relationships & Connection",
		Prompt:   "What do you need more of from others that you rarely ask for?",
		FollowUp: "What stops you—pride, fear, habit, or something else?",
		Tags:     []string{"relationships", "fear"}, Intensity: 3,
		UseIf: []string{"general", "relationships"}},
	{ID: "relationships-4", Section: "relationships", SectionName: "Relationships & Connection",
		Prompt:   "What conversation are you postponing?",
		FollowUp: "If you had to say the first 2 sentences, what are they?",
		Tags:     []string{"relationships", "fear"}, Intensity: 4,
		UseIf: []string{"general", "relationships", "transition"}},

	// Work + meaning
	{ID: "work-1", Section: "work", SectionName: "Work & Meaning",
		Prompt: "Where are you over-performing to earn safety or approval?",
		Tags:   []string{"work", "fear", "identity"}, Intensity: 3,
		UseIf: []string{"general", "career"}},
	{ID: "work-2", Section: "work", SectionName: "Work & Meaning",
		Prompt: "What part of your work (paid or unpaid) feels meaningful—and what feels like a costume?",
		Tags:   []string{"work", "meaning", "identity"}, Intensity: 3,
		UseIf: []string{"general", "career"}},
	{ID: "work-3", Section: "work", SectionName: "Work & Meaning",
		Prompt: "If you knew you could not fail socially, what change would you make?",
		Tags:   []string{"work", "fear", "meaning"}, Intensity: 3,
		UseIf: []string{"general", "career", "transition"}},

	// Pattern + choice
	{ID: "pattern-1", Section: "pattern", SectionName: "Patterns & Choices",
		Prompt:   "Name a pattern you keep repeating that you're tired of.",
		FollowUp: "What does that pattern protect you from feeling?",
		Tags:     []string{"identity", "fear"}, Intensity: 4, Core: true},
	{ID: "pattern-2", Section: "pattern", SectionName: "Patterns & Choices",
		Prompt: "What do you already know you should do—but haven't done?",
		Tags:   []string{"meaning", "fear"}, Intensity: 3, Core: true},
	{ID: "pattern-3", Section: "pattern", SectionName: "Patterns & Choices",
		Prompt: "What is one small act of self-respect you could do in the next 72 hours?",
		Tags:   []string{"values", "meaning"}, Intensity: 2, Core: true},

	// Closing
	{ID: "closing", Section: "closing", SectionName: "Closing",
		Prompt: "Anything else you want me to know before I write the letter?",
		Tags:   []string{}, Intensity: 1, Core: true},
}

// Pool returns the shared general question pool in authored order.
func Pool() []models.Question {
	out := make([]models.Question, len(pool))
	copy(out, pool)
	return out
}

// SelectQuestions resolves a mode id to its ordered question list. Life-event
// modes return their fixed list verbatim. General modes filter the shared
// pool: core questions, unrestricted questions, and questions whose UseIf
// includes the mode, in pool order, capped at MaxGeneralQuestions. An unknown
// mode id returns an empty list; callers must treat that as an error state.
func SelectQuestions(modeID string) []models.Question {
	if fixed, ok := lifeEventQuestions[modeID]; ok {
		out := make([]models.Question, len(fixed))
		copy(out, fixed)
		return out
	}

	if !KnownMode(modeID) {
		return nil
	}

	var filtered []models.Question
	for _, q := range pool {
		if q.Core || len(q.UseIf) == 0 || containsMode(q.UseIf, modeID) {
			filtered = append(filtered, q)
		}
		if len(filtered) == MaxGeneralQuestions {
			break
		}
	}
	return filtered
}

func containsMode(modes []string, modeID string) bool {
	for _, m := range modes {
		if m == modeID {
			return true
		}
	}
	return false
}
