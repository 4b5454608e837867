package topic

var defaultKeywords = []string{
	"l'oréal", "loreal", "product", "routine",
	"skin", "hair", "makeup", "cosmetic",
	"serum", "moisturizer", "shampoo", "conditioner",
	"cream", "cleanser", "face", "beauty",
	"foundation", "lipstick", "mascara", "eyeliner",
	"blush", "concealer", "sunscreen", "spf",
	"toner", "exfoliate", "exfoliator", "scrub",
	"mask", "sheet mask", "hydration", "hydrating",
	"anti-aging", "antiage", "wrinkle", "acne",
	"blemish", "spot", "oil", "oily",
	"dry", "dryness", "moisture", "frizz",
	"frizzy", "curl", "curly", "straight",
	"color", "colour", "dye", "treatment",
	"repair", "renew", "regenerate", "peel",
	"eye cream", "eye serum", "night cream", "day cream",
	"lotion", "body", "body wash", "body lotion",
	"body cream", "body oil", "nail", "nails",
	"cuticle", "scalp", "scalp care", "hair loss",
	"hair fall", "volume", "volumizing", "shine",
	"glow", "brighten", "brightening", "clarify",
	"clarifying", "pore", "pores", "pimple",
	"pimples", "zit", "zits", "blemishes",
	"breakout", "blackhead", "whitehead", "sensitive",
	"sensitivity", "redness", "soothe", "soothing",
	"refresh", "refreshing", "clean", "cleansing",
	"wash", "rinsing", "application", "apply",
	"how to use", "instructions", "ingredients", "allergy",
	"allergic", "safe", "safety", "dermatologist",
	"tested", "recommend", "recommendation", "suggest",
	"suggestion", "tips", "advice", "care",
	"self-care", "personal care",
}

// DefaultKeywords returns a copy of the stock cosmetics and personal-care list.
func DefaultKeywords() []string {
	return append([]string(nil), defaultKeywords...)
}
