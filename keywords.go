package mindful

// Default keyword lists for the crisis detector. These are operational
// safety content: edit with clinical review, never paraphrase in code.

// DefaultCrisisKeywords signal ideation or self-harm.
var DefaultCrisisKeywords = []string{
	"suicide",
	"kill myself",
	"end it all",
	"want to die",
	"no reason to live",
	"better off dead",
	"self-harm",
	"hurt myself",
	"can't go on",
	"no hope",
	"overdose",
	"end my life",
	"goodbye cruel world",
}

// DefaultSevereKeywords signal immediacy, plan, or method. They are scored
// at double weight because they indicate imminent intent rather than
// ideation.
var DefaultSevereKeywords = []string{
	"plan to",
	"going to",
	"tonight",
	"right now",
	"have the",
	"pills",
	"gun",
	"jump off",
	"step in front",
}
