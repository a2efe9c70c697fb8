package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/pulsedigest/pulse/internal/config"
)

func TestNewClientOpenAI(t *testing.T) {
	c, err := NewClient(config.LLMConfig{Provider: "openai", OpenAIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := c.(*OpenAI); !ok {
		t.Errorf("client = %T, want *OpenAI", c)
	}
}

func TestNewClientOpenAIRequiresKey(t *testing.T) {
	if _, err := NewClient(config.LLMConfig{Provider: "openai"}); err == nil {
		t.Error("NewClient accepted openai without a key")
	}
}

func TestNewClientOllamaDefaults(t *testing.T) {
	c, err := NewClient(config.LLMConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := c.(*Ollama); !ok {
		t.Errorf("client = %T, want *Ollama", c)
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	if _, err := NewClient(config.LLMConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Error("NewClient accepted an unknown provider")
	}
}

func TestMockClientRecordsCalls(t *testing.T) {
	m := &MockClient{Response: &Response{Content: "summary"}}

	resp, err := m.Complete(context.Background(), "first prompt")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "summary" {
		t.Errorf("content = %q", resp.Content)
	}

	m.Complete(context.Background(), "second prompt")
	if len(m.Calls) != 2 || m.Calls[1] != "second prompt" {
		t.Errorf("calls = %v", m.Calls)
	}
}

func TestSummaryPrompt(t *testing.T) {
	p := SummaryPrompt("Apollo", "urgent", []string{
		"1. From bob: launch slipped",
		"2. From alice: need sign-off",
	})

	for _, want := range []string{"Apollo", "urgent", "launch slipped", "need sign-off"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
