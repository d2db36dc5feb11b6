package main

import (
	"fmt"
	"os"

	"spicy-biryani/internal/chatbot"
	"spicy-biryani/internal/config"
	"spicy-biryani/internal/conversation"
	"spicy-biryani/internal/panel"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var rules []chatbot.Rule
	if cfg.ChatRulesFile != "" {
		rules, err = chatbot.LoadRules(cfg.ChatRulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load chat rules: %v\n", err)
			os.Exit(1)
		}
	}

	conv := conversation.New(
		chatbot.NewResponder(rules),
		conversation.WithDelay(cfg.ChatReplyDelay),
		conversation.WithWelcome(chatbot.WelcomeMessage),
	)
	if err := panel.Run(conv); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
