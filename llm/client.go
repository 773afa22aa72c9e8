// Package llm wraps the text-generation collaborator. Letter synthesis,
// comparison narratives and check-in reflections are all plain
// prompt-plus-input text transforms; failures are always recoverable by
// retry and never fatal to session state.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/sturner103/letter-to-you/config"
)

const requestTimeout = 90 * time.Second

// Generator is the text-generation contract the rest of the app depends on.
type Generator interface {
	Generate(ctx context.Context, prompt, systemInstructions string, maxTokens int) (string, error)
}

// LemurClient generates text through the AssemblyAI LeMUR task API with a
// Claude final model.
type LemurClient struct {
	client *assemblyai.Client
	model  string
}

// NewLemurClient creates a client from configuration.
func NewLemurClient() (*LemurClient, error) {
	if config.AAIAPIKey == "" {
		return nil, errors.New("AAI_API_KEY environment variable is required")
	}
	return &LemurClient{
		client: assemblyai.NewClient(config.AAIAPIKey),
		model:  config.LetterModel,
	}, nil
}

// Generate runs one prompt against the model and returns the generated
// prose. The prompt is passed as input text and the system instructions as
// the task prompt, so the model sees instructions and material separately.
func (c *LemurClient) Generate(ctx context.Context, prompt, systemInstructions string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var params assemblyai.LeMURTaskParams
	params.Prompt = assemblyai.String(systemInstructions)
	params.InputText = assemblyai.String(prompt)
	params.FinalModel = assemblyai.LeMURModel(c.model)
	params.MaxOutputSize = assemblyai.Int64(int64(maxTokens))
	params.Temperature = assemblyai.Float64(0.7)

	start := time.Now()
	response, err := c.client.LeMUR.Task(ctx, params)
	if err != nil {
		log.Printf("LeMUR task failed after %v: %v", time.Since(start), err)
		return "", fmt.Errorf("text generation failed: %w", err)
	}

	if response.Response == nil || *response.Response == "" {
		return "", errors.New("no letter content received")
	}

	log.Printf("LeMUR task completed in %v", time.Since(start))
	return *response.Response, nil
}
