package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"healthassist-be/internal/bootstrap"
	"healthassist-be/internal/config"
	"healthassist-be/internal/dto"
	"healthassist-be/internal/pkg/logger"
	"healthassist-be/internal/repository/memory"
	"healthassist-be/pkg/conversation/fallback"
	"healthassist-be/pkg/conversation/response"
	"healthassist-be/pkg/lock"

	"github.com/fatih/color"
)

var (
	owner     = flag.String("owner", "terminal@localhost", "Owner identity for the session")
	sessionId = flag.String("session", "", "Session id to use (generated when empty)")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	cfg := config.Load()
	nop := logger.NewNopLogger()

	generator := response.NewGenerator(
		bootstrap.NewLLMProvider(cfg),
		fallback.NewDefaultResponder(),
		cfg.Ai.SystemPrompt,
		cfg.Ai.Timeout,
		nop,
	)
	chatbot := bootstrap.NewChatbotService(
		memory.NewChatSessionRepository(),
		generator,
		lock.NewMemoryLocker(0),
		cfg.Session.LockTimeout,
		nil,
		nop,
	)

	created, err := chatbot.CreateSession(ctx, *owner, &dto.CreateSessionRequest{SessionId: *sessionId})
	if err != nil {
		color.Red("Failed to create session: %v", err)
		os.Exit(1)
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("HealthAssist"))
	fmt.Printf("Session: %s\n", boldCyan(created.SessionId))
	if generator.Available() {
		fmt.Printf("Backend: %s\n", boldCyan(cfg.Ai.LLMProvider))
	} else {
		fmt.Println(color.YellowString("Backend inactive, answering from the fallback table"))
	}
	fmt.Println("Type your message and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		userInput := strings.TrimSpace(scanner.Text())
		if userInput == "" {
			continue
		}
		if strings.EqualFold(userInput, "exit") || strings.EqualFold(userInput, "quit") {
			fmt.Println("Goodbye!")
			break
		}

		res, err := chatbot.SendMessage(ctx, *owner, created.SessionId, &dto.SendChatRequest{Message: userInput})
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		fmt.Printf("%s %s\n\n", boldCyan("Bot:"), res.BotResponse)
	}

	if err := scanner.Err(); err != nil {
		color.Red("Error reading input: %v", err)
	}
}
