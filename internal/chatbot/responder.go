// Package chatbot clasifica mensajes de soporte con reglas ordenadas y
// devuelve una respuesta fija. La primera regla que coincide gana.
package chatbot

import "strings"

// Responder evalúa una tabla de reglas inmutable.
type Responder struct {
	rules []Rule
}

// NewResponder crea un Responder; con rules vacío usa DefaultRules.
func NewResponder(rules []Rule) *Responder {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &Responder{rules: owned}
}

// Normalize recorta espacios y pasa a minúsculas.
func Normalize(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// ClassifyAndReply devuelve la respuesta de la primera regla que coincide,
// o la respuesta de fallback con el texto original.
func (r *Responder) ClassifyAndReply(input string) string {
	_, reply := r.Classify(input)
	return reply
}

// Classify es como ClassifyAndReply pero además devuelve el intent elegido.
func (r *Responder) Classify(input string) (string, string) {
	normalized := Normalize(input)
	for _, rule := range r.rules {
		if rule.Matches(normalized) {
			return rule.Intent, rule.Reply
		}
	}
	return IntentFallback, FallbackReply(input)
}

// Rules devuelve una copia de la tabla en orden de prioridad.
func (r *Responder) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// FallbackReply cita el texto tal cual lo escribió el usuario.
func FallbackReply(input string) string {
	return `I understand you're asking about: "` + input + `". Let me help! 🤔 For specific questions about orders, please contact us at ` +
		ContactPhone + `. For menu items, check out our menu section. How else can I assist you?`
}
