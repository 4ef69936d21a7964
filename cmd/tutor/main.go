package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-tutor-be/internal/config"
	"ai-tutor-be/pkg/embedding"
	"ai-tutor-be/pkg/llm/factory"
	"ai-tutor-be/pkg/rag/prompt"
	"ai-tutor-be/pkg/rag/response"
	"ai-tutor-be/pkg/tutor"
	"ai-tutor-be/pkg/vectorstore"
	chromemstore "ai-tutor-be/pkg/vectorstore/chromem"
)

func main() {
	cfg := config.Load()

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("Failed to initialize LLM provider: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("AITA TESTING DEMO")
	fmt.Println("----------------------")
	fmt.Println("CHOOSE YOUR MODEL: \n0. Generic \n1. Math \n2. Physics \n3. English \n4. Computer Science \nX. Other")

	choice := readLine(reader)
	library := prompt.NewLibrary()

	var systemInstruction string
	switch choice {
	case "0":
		systemInstruction = library.Instruction(prompt.SubjectGeneric)
	case "1":
		systemInstruction = library.Instruction(prompt.SubjectMath)
	case "2":
		systemInstruction = library.Instruction(prompt.SubjectPhysics)
	case "3":
		systemInstruction = library.Instruction(prompt.SubjectEnglish)
	case "4":
		systemInstruction = library.Instruction(prompt.SubjectComputerScience)
	case "X", "x":
		fmt.Print("Enter the name of the subject: ")
		subject := readLine(reader)
		fmt.Print("Optional: Enter the name of the specific course (press ENTER to skip): ")
		course := readLine(reader)
		fmt.Print("Optional: Enter the name of the university/college (press ENTER to skip): ")
		university := readLine(reader)
		systemInstruction = prompt.CustomInstruction(subject, course, university)
	default:
		fmt.Println("Not a valid choice. Enter a single number. Please rerun the program and try again.")
		os.Exit(1)
	}

	// Interactive mode retries a rate-limited call once after a short sleep.
	generator := response.NewGenerator(llmProvider, nil, response.WithRateLimitRetry())

	options := []tutor.SessionOption{}
	if store := openStore(cfg); store != nil {
		options = append(options, tutor.WithRetrieval(store, cfg.Rag.RetrievalK, ""))
	}

	session := tutor.NewSession(generator, systemInstruction, options...)

	fmt.Println("---------------------------------------------------------------------------------")
	fmt.Println("Type 'quit' to end conversation.")
	fmt.Println()

	if err := session.Run(context.Background(), tutor.NewReaderInput(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("Conversation ended with error: %v", err)
	}
}

// openStore wires the embedded vector store for question grounding.
// Grounding is optional; any setup problem just means ungrounded answers.
func openStore(cfg *config.Config) vectorstore.Store {
	if cfg.Store.Backend != "chromem" {
		return nil
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		if cfg.Keys.GoogleGemini == "" {
			return nil
		}
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	store, err := chromemstore.New(chromemstore.Config{
		Path:       cfg.Store.Path,
		Collection: cfg.Store.Collection,
		Timeout:    cfg.Store.Timeout,
	}, embedder, nil)
	if err != nil {
		log.Printf("Vector store unavailable, answering without course materials: %v", err)
		return nil
	}
	return store
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
