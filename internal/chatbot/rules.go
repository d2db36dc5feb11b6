package chatbot

import "regexp"

// ContactPhone es el canal de contacto fijo que citan las respuestas.
const ContactPhone = "+91 9390492316"

// Intents en orden de prioridad.
const (
	IntentGreeting       = "greeting"
	IntentMenu           = "menu"
	IntentOrderTracking  = "order_tracking"
	IntentDeliveryTime   = "delivery_time"
	IntentPrice          = "price"
	IntentLocation       = "location"
	IntentContact        = "contact"
	IntentPayment        = "payment"
	IntentOrdering       = "ordering"
	IntentSpecialRequest = "special_request"
	IntentHours          = "hours"
	IntentComplaint      = "complaint"
	IntentThanks         = "thanks"
	IntentFallback       = "fallback"
)

// Rule asocia un patrón sobre el texto normalizado con una respuesta fija.
type Rule struct {
	Intent  string
	Pattern *regexp.Regexp
	Reply   string
}

// Matches evalúa el patrón contra un texto ya normalizado.
func (r Rule) Matches(normalized string) bool {
	return r.Pattern != nil && r.Pattern.MatchString(normalized)
}

var defaultRules = []Rule{
	{
		Intent:  IntentGreeting,
		Pattern: regexp.MustCompile(`^(hi|hello|hey|greetings)`),
		Reply:   "Hello! 👋 Thank you for contacting Spicy Biryani! How can I help you today?",
	},
	{
		Intent:  IntentMenu,
		Pattern: regexp.MustCompile(`(menu|what do you serve|what.*available|items|dishes)`),
		Reply:   "We serve delicious biryanis! 🍛 Our menu includes Chicken Biryani, Mutton Biryani, Veg Biryani, and more. You can browse our full menu on the website. Would you like to know about a specific dish?",
	},
	{
		Intent:  IntentOrderTracking,
		Pattern: regexp.MustCompile(`(track|order.*status|where.*order|my order)`),
		Reply:   "To track your order, click on the package icon (📦) in the navigation bar and enter your order number. You'll get real-time updates on your order status!",
	},
	{
		Intent:  IntentDeliveryTime,
		Pattern: regexp.MustCompile(`(delivery|time|how long|when|eta|estimated)`),
		Reply:   "Our standard delivery time is 30-45 minutes! ⏱️ We prepare everything fresh when you order. You'll get updates as your order progresses.",
	},
	{
		Intent:  IntentPrice,
		Pattern: regexp.MustCompile(`(price|cost|how much|rate|pricing)`),
		Reply:   "Our prices are competitive and listed on the menu! 💰 Prices vary by dish - check out our menu section for detailed pricing. Most biryanis range from ₹150-350.",
	},
	{
		Intent:  IntentLocation,
		Pattern: regexp.MustCompile(`(address|location|where|deliver|area)`),
		Reply:   "We deliver to various areas! 📍 Please enter your delivery address during checkout to see if we deliver to your location. For more details, contact us at " + ContactPhone + ".",
	},
	{
		Intent:  IntentContact,
		Pattern: regexp.MustCompile(`(contact|phone|number|call|reach|support)`),
		Reply:   "You can reach us at " + ContactPhone + " 📞. We're here to help with orders, inquiries, or any questions you might have!",
	},
	{
		Intent:  IntentPayment,
		Pattern: regexp.MustCompile(`(payment|pay|cod|card|upi|online payment)`),
		Reply:   "We accept Cash on Delivery (COD), UPI, and card payments! 💳 Choose your preferred payment method during checkout.",
	},
	{
		Intent:  IntentOrdering,
		Pattern: regexp.MustCompile(`(order|how.*order|place order|buy)`),
		Reply:   "Ordering is easy! 🛒 Add items to your cart, click checkout, fill in your details, and confirm. You'll receive a confirmation with your order number for tracking!",
	},
	{
		Intent:  IntentSpecialRequest,
		Pattern: regexp.MustCompile(`(spicy|mild|extra|special|request|modification|customize)`),
		Reply:   "We'd love to customize your order! 🌶️ Please mention any special requests in the notes section during checkout, and we'll do our best to accommodate them.",
	},
	{
		Intent:  IntentHours,
		Pattern: regexp.MustCompile(`(open|hours|timing|when.*open|close|time)`),
		Reply:   "We're open daily! ⏰ Please contact us at " + ContactPhone + " for our exact operating hours and availability.",
	},
	{
		Intent:  IntentComplaint,
		Pattern: regexp.MustCompile(`(problem|issue|complaint|wrong|mistake|error|not satisfied)`),
		Reply:   "I'm sorry to hear about the issue! 😔 Please contact us immediately at " + ContactPhone + " and we'll resolve it right away. Your satisfaction is our priority!",
	},
	{
		Intent:  IntentThanks,
		Pattern: regexp.MustCompile(`(thank|thanks|appreciate)`),
		Reply:   "You're very welcome! 😊 We're happy to help. Is there anything else you'd like to know?",
	},
}

// DefaultRules devuelve una copia de la tabla de reglas incorporada.
func DefaultRules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}

// WelcomeMessage es el saludo con el que arranca cada conversación.
const WelcomeMessage = "Hello! 👋 Welcome to Spicy Biryani! I'm here to help you with orders, menu questions, or anything else. How can I assist you today?"
