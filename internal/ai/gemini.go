// Package ai talks to Gemini for transcription and summaries
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("empty response from model")

const (
	transcribeInstruction = "You are a transcription service. Transcribe the following audio precisely. Do not add any extra commentary or information."
	transcribePrompt      = "Transcribe the following audio:"

	summaryPrompt = `Please provide a concise and well-structured summary of the following text.
Focus on the key points, main ideas, and important details.
Keep the summary clear and informative while being significantly shorter than the original text.

Text to summarize:
%s

Summary:`
)

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("no Gemini API key provided")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client, %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// Transcribe returns the text spoken in audio
func (g *Gemini) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("no audio provided")
	}

	// Recorders produce webm/mp4 containers that sniff as video even when
	// they only carry sound
	mimeType = strings.Replace(mimeType, "video/", "audio/", 1)

	zap.L().Debug("Sending audio to Gemini", zap.Int("bytes", len(audio)), zap.String("mime", mimeType))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(transcribePrompt),
			genai.NewPartFromBytes(audio, mimeType),
		}, genai.RoleUser),
	}

	text, err := g.generate(ctx, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(transcribeInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio, %w", err)
	}

	return text, nil
}

// Summarize returns a short summary of text
func (g *Gemini) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("transcription is required for summary generation")
	}

	summary, err := g.generate(ctx, genai.Text(fmt.Sprintf(summaryPrompt, text)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate summary, %w", err)
	}

	return summary, nil
}
