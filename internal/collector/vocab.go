package collector

// Search vocabulary for food-delivery customer experience. Every term runs
// as its own search pass; the seen-index collapses the overlap.
var searchTerms = []string{
	// Core search terms
	"problem", "issue", "terrible", "bad", "great", "awesome",
	"driver", "delivery", "order", "customer service", "refund",
	"cancel", "late", "missing", "wrong", "charge", "tip",
	"food", "cold", "wait", "app", "error", "crash", "glitch",
	"overcharge", "price", "expensive", "discount", "promo",

	// Additional search terms
	"experience", "rating", "dasher", "courier", "vehicle", "bike", "car",
	"delayed", "damaged", "quality", "packaging", "restaurant", "merchant",
	"address", "location", "gps", "map", "directions", "instructions",
	"communication", "contact", "support", "chat", "phone", "call", "text",
	"payment", "card", "wallet", "subscription", "plus", "fees", "tax",
	"receipt", "estimate", "actual", "notification", "tracking",
	"account", "login", "password", "verification", "bonus", "reward",
	"satisfaction", "disappointed", "happy", "frustrated", "angry", "love",
	"hate", "never again", "first time", "loyal", "regular", "customer",
	"lost", "stolen", "compensation", "resolution", "solution", "fixed",
	"fast", "slow", "quick", "temperature", "hot", "warm", "frozen",
	"delivered", "received", "picked up", "preparing", "ready",

	// Quoted multi-word phrases
	`"customer service"`, `"delivery time"`, `"wrong order"`,
	`"missing items"`, `"cold food"`, `"wrong address"`,
	`"not delivered"`, `"damaged food"`, `"bad experience"`,
	`"great service"`, `"friendly driver"`, `"app issues"`,
}

// Common flairs in food-delivery subreddits.
var flairs = []string{
	"Complaint", "Issue", "Question", "Discussion", "Experience",
	"Feedback", "Problem", "Help", "Rant", "PSA", "Warning", "Tip",
}
