package llm

import (
	"testing"
)

func TestBuildRequestRoleMapping(t *testing.T) {
	p := NewGoogleProvider("key", "gemini-2.5-flash")

	req := p.buildRequest(CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be brief"},
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
			{Role: RoleUser, Content: "again"},
		},
	})

	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be brief" {
		t.Errorf("expected system instruction, got %+v", req.SystemInstruction)
	}
	if len(req.Contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(req.Contents))
	}
	if req.Contents[0].Role != "user" || req.Contents[1].Role != "model" || req.Contents[2].Role != "user" {
		t.Errorf("unexpected roles: %s %s %s", req.Contents[0].Role, req.Contents[1].Role, req.Contents[2].Role)
	}
}

func TestBuildRequestWebSearchTool(t *testing.T) {
	p := NewGoogleProvider("key", "gemini-2.5-flash")

	req := p.buildRequest(CompletionRequest{
		Messages:  []Message{{Role: RoleUser, Content: "q"}},
		WebSearch: true,
	})
	if len(req.Tools) != 1 || req.Tools[0].GoogleSearch == nil {
		t.Errorf("expected google_search tool, got %+v", req.Tools)
	}

	req = p.buildRequest(CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "q"}},
	})
	if len(req.Tools) != 0 {
		t.Errorf("expected no tools without web search, got %+v", req.Tools)
	}
}

func TestBuildRequestEmptyMessages(t *testing.T) {
	p := NewGoogleProvider("key", "gemini-2.5-flash")

	req := p.buildRequest(CompletionRequest{})
	if len(req.Contents) != 1 {
		t.Fatalf("expected placeholder content, got %d", len(req.Contents))
	}
}
