package main

import (
	"os"
	"path/filepath"
	"testing"

	"spicy-biryani/internal/chatbot"
)

func TestDefaultScenariosPassAgainstBuiltInRules(t *testing.T) {
	responder := chatbot.NewResponder(nil)
	for _, sc := range defaultScenarios {
		v := judge(responder, sc)
		if !v.Passed {
			t.Errorf("%q: expected %s, got %s", sc.Input, sc.ExpectedIntent, v.Intent)
		}
	}
}

func TestUnreachedRules(t *testing.T) {
	rules := chatbot.DefaultRules()
	verdicts := []verdict{{Intent: chatbot.IntentGreeting}, {Intent: chatbot.IntentFallback}}
	unreached := unreachedRules(rules, verdicts)
	if len(unreached) != len(rules)-1 {
		t.Fatalf("expected every rule but greeting, got %v", unreached)
	}
	for _, intent := range unreached {
		if intent == chatbot.IntentGreeting {
			t.Fatalf("greeting was reached and must not be reported")
		}
	}

	var all []verdict
	for _, sc := range defaultScenarios {
		all = append(all, judge(chatbot.NewResponder(nil), sc))
	}
	if got := unreachedRules(rules, all); len(got) != 0 {
		t.Fatalf("default scenarios should reach every rule, missing %v", got)
	}
}

func TestLoadScenarios(t *testing.T) {
	got, err := loadScenarios("")
	if err != nil || len(got) != len(defaultScenarios) {
		t.Fatalf("expected default scenarios, got %d err=%v", len(got), err)
	}

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	content := "- input: \"hey\"\n  expected_intent: greeting\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = loadScenarios(path)
	if err != nil || len(got) != 1 || got[0].ExpectedIntent != "greeting" {
		t.Fatalf("unexpected scenarios %+v err=%v", got, err)
	}

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	_ = os.WriteFile(empty, []byte("[]\n"), 0o600)
	if _, err := loadScenarios(empty); err == nil {
		t.Fatalf("expected error for empty scenarios file")
	}
}
