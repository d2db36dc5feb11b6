package chatbot

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmptyRuleSet = errors.New("rule file contains no rules")

type ruleEntry struct {
	Intent  string `yaml:"intent"`
	Pattern string `yaml:"pattern"`
	Reply   string `yaml:"reply"`
}

// LoadRules lee una tabla de reglas ordenada desde un archivo YAML.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules compila una lista YAML de {intent, pattern, reply}. El orden del
// archivo es el orden de prioridad.
func ParseRules(data []byte) ([]Rule, error) {
	var entries []ruleEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyRuleSet
	}

	rules := make([]Rule, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		intent := strings.TrimSpace(entry.Intent)
		if intent == "" || strings.TrimSpace(entry.Pattern) == "" || strings.TrimSpace(entry.Reply) == "" {
			return nil, fmt.Errorf("rule %d: intent, pattern and reply are required", i)
		}
		if intent == IntentFallback {
			return nil, fmt.Errorf("rule %d: intent %q is reserved", i, intent)
		}
		if seen[intent] {
			return nil, fmt.Errorf("rule %d: duplicate intent %q", i, intent)
		}
		seen[intent] = true

		pattern, err := regexp.Compile("(?i)" + entry.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): compile pattern: %w", i, intent, err)
		}
		rules = append(rules, Rule{Intent: intent, Pattern: pattern, Reply: entry.Reply})
	}
	return rules, nil
}
