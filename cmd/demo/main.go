package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"storyreel/demo/tui"
)

func main() {
	_ = godotenv.Load()

	apiURL := flag.String("url", "http://localhost:8080", "Render API URL")
	payloadFile := flag.String("payload", "render.json", "Path to a render request JSON payload")
	flag.Parse()

	payload, err := os.ReadFile(*payloadFile)
	if err != nil {
		fmt.Printf("Error reading payload file: %v\n", err)
		os.Exit(1)
	}

	m := tui.NewModel(*apiURL, payload)
	program := tea.NewProgram(m)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
