package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spicy-biryani/internal/chatbot"
)

// Scenario es una frase de cliente y el intent que debería elegir el bot.
type Scenario struct {
	Input          string `yaml:"input"`
	ExpectedIntent string `yaml:"expected_intent"`
}

type verdict struct {
	Scenario Scenario
	Intent   string
	Reply    string
	Passed   bool
}

// defaultScenarios cubre cada intent una vez más los solapamientos conocidos.
var defaultScenarios = []Scenario{
	{Input: "Hello there", ExpectedIntent: chatbot.IntentGreeting},
	{Input: "Can I see the menu?", ExpectedIntent: chatbot.IntentMenu},
	{Input: "Where is my order?", ExpectedIntent: chatbot.IntentOrderTracking},
	{Input: "How long does delivery take?", ExpectedIntent: chatbot.IntentDeliveryTime},
	{Input: "What is the price of mutton biryani?", ExpectedIntent: chatbot.IntentPrice},
	{Input: "Do you deliver to Banjara Hills?", ExpectedIntent: chatbot.IntentLocation},
	{Input: "I need your phone number", ExpectedIntent: chatbot.IntentContact},
	{Input: "Do you accept UPI?", ExpectedIntent: chatbot.IntentPayment},
	{Input: "I want to buy biryani", ExpectedIntent: chatbot.IntentOrdering},
	{Input: "Can you make it extra spicy?", ExpectedIntent: chatbot.IntentSpecialRequest},
	{Input: "Are you open on Sunday?", ExpectedIntent: chatbot.IntentHours},
	{Input: "The food was cold, big problem", ExpectedIntent: chatbot.IntentComplaint},
	{Input: "thank you so much", ExpectedIntent: chatbot.IntentThanks},
	{Input: "xyz", ExpectedIntent: chatbot.IntentFallback},
	// "time" lo toma delivery_time antes que hours.
	{Input: "What time do you close?", ExpectedIntent: chatbot.IntentDeliveryTime},
	// El saludo solo cuenta al comienzo del mensaje.
	{Input: "oh hi, what dishes do you have", ExpectedIntent: chatbot.IntentMenu},
}

func loadScenarios(path string) ([]Scenario, error) {
	if path == "" {
		return defaultScenarios, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var out []Scenario
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("scenarios file %s is empty", path)
	}
	return out, nil
}

func judge(responder *chatbot.Responder, sc Scenario) verdict {
	intent, reply := responder.Classify(sc.Input)
	return verdict{
		Scenario: sc,
		Intent:   intent,
		Reply:    reply,
		Passed:   intent == sc.ExpectedIntent,
	}
}

// unreachedRules lista las reglas que ningún escenario llegó a elegir.
func unreachedRules(rules []chatbot.Rule, verdicts []verdict) []string {
	hit := make(map[string]bool, len(verdicts))
	for _, v := range verdicts {
		hit[v.Intent] = true
	}
	var out []string
	for _, r := range rules {
		if !hit[r.Intent] {
			out = append(out, r.Intent)
		}
	}
	return out
}
