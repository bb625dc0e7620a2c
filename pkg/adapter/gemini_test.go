package adapter_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"

	"github.com/SophieeeeeChen/lawai/pkg/adapter"
)

func setupGemini(t *testing.T) *adapter.GeminiClient {
	projectID := os.Getenv("TEST_GEMINI_PROJECT")
	if projectID == "" {
		t.Skip("TEST_GEMINI_PROJECT is not set")
	}

	ctx := context.Background()
	client, err := adapter.NewGemini(ctx, projectID, "us-central1")
	gt.NoError(t, err)
	return client
}

func TestGenerateContent(t *testing.T) {
	client := setupGemini(t)
	ctx := context.Background()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: "In one sentence, what does section 79 of the Family Law Act deal with?"},
			},
		},
	}

	resp, err := client.GenerateContent(ctx, contents, nil)
	gt.NoError(t, err)
	gt.S(t, adapter.ResponseText(resp)).NotEqual("")
}

func TestEmbedding(t *testing.T) {
	client := setupGemini(t)
	ctx := context.Background()

	vec, err := client.Embedding(ctx, "- Asset Pool: family home valued at $800k", 768)
	gt.NoError(t, err)
	gt.A(t, vec).Length(768)
}
