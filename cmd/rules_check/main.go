package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"spicy-biryani/internal/chatbot"
	"spicy-biryani/internal/config"
)

const (
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	rulesPath := flag.String("rules", cfg.ChatRulesFile, "YAML rule file (defaults to the built-in table)")
	scenariosPath := flag.String("scenarios", "", "YAML scenario file (defaults to the built-in scenarios)")
	flag.Parse()

	var rules []chatbot.Rule
	if *rulesPath != "" {
		rules, err = chatbot.LoadRules(*rulesPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	responder := chatbot.NewResponder(rules)

	scenarios, err := loadScenarios(*scenariosPath)
	if err != nil {
		log.Fatal(err)
	}

	var failed int
	verdicts := make([]verdict, 0, len(scenarios))
	for _, sc := range scenarios {
		v := judge(responder, sc)
		verdicts = append(verdicts, v)

		fmt.Printf("%s[Input]%s %s\n", colorCyan, colorReset, sc.Input)
		if v.Passed {
			fmt.Printf("  %sPASS%s %s\n", colorGreen, colorReset, v.Intent)
		} else {
			failed++
			fmt.Printf("  %sFAIL%s expected %s, got %s\n", colorRed, colorReset, sc.ExpectedIntent, v.Intent)
			fmt.Printf("  reply: %s\n", v.Reply)
		}
	}

	for _, intent := range unreachedRules(responder.Rules(), verdicts) {
		fmt.Printf("%s[warn]%s no scenario reached rule %q\n", colorYellow, colorReset, intent)
	}

	fmt.Printf("\n%d/%d scenarios passed\n", len(scenarios)-failed, len(scenarios))
	if failed > 0 {
		os.Exit(1)
	}
}
