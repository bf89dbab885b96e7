package markum

// emojiTable maps shortcode names to glyphs. Unknown codes render
// literally with a fail class.
var emojiTable = map[string]string{
	"smile":        "😄",
	"grin":         "😁",
	"joy":          "😂",
	"wink":         "😉",
	"blush":        "😊",
	"thinking":     "🤔",
	"sunglasses":   "😎",
	"cry":          "😢",
	"scream":       "😱",
	"heart":        "❤️",
	"broken_heart": "💔",
	"star":         "⭐",
	"sparkles":     "✨",
	"fire":         "🔥",
	"zap":          "⚡",
	"boom":         "💥",
	"tada":         "🎉",
	"rocket":       "🚀",
	"bulb":         "💡",
	"warning":      "⚠️",
	"check":        "✔️",
	"x":            "❌",
	"question":     "❓",
	"exclamation":  "❗",
	"plus1":        "👍",
	"thumbsup":     "👍",
	"thumbsdown":   "👎",
	"wave":         "👋",
	"clap":         "👏",
	"pray":         "🙏",
	"muscle":       "💪",
	"eyes":         "👀",
	"brain":        "🧠",
	"book":         "📖",
	"books":        "📚",
	"memo":         "📝",
	"pencil":       "✏️",
	"mag":          "🔍",
	"link":         "🔗",
	"lock":         "🔒",
	"key":          "🔑",
	"gear":         "⚙️",
	"hammer":       "🔨",
	"snake":        "🐍",
	"gopher":       "🐹",
	"cat":          "🐱",
	"dog":          "🐶",
	"coffee":       "☕",
	"pizza":        "🍕",
	"beer":         "🍺",
	"sun":          "☀️",
	"moon":         "🌙",
	"cloud":        "☁️",
	"rainbow":      "🌈",
	"earth":        "🌍",
	"100":          "💯",
}
