package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/qa"
)

func main() {
	cfg := config.Load()
	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	question := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if question == "" {
		question = prompt()
	}
	if question == "" {
		fmt.Println("No question provided. Use the frontend to ask questions.")
		return
	}

	svc, cleanup, err := qa.Setup(cfg, "cli", nil)
	if err != nil {
		logging.Fatalf("[ask] setup: %v", err)
	}
	defer cleanup()

	answer := svc.Ask(ctx, question)
	fmt.Printf("Question: %s\n", question)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Answer: %s\n", answer)
	if qa.IsFailure(answer) {
		os.Exit(1)
	}
}

func prompt() string {
	fmt.Print("Enter your question: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
