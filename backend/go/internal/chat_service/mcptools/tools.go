package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"moihub_chatbot/backend/go/internal/chat_service/service"
	"moihub_chatbot/backend/go/internal/models"
	"moihub_chatbot/backend/go/pkg/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// 工具名称。
const (
	ToolAsk           = "ask"
	ToolTeach         = "teach"
	ToolListKnowledge = "list_knowledge"
)

// Tools 把 KnowledgeService 暴露为 MCP 工具。
type Tools struct {
	service  *service.KnowledgeService
	fallback string
	logger   *logger.Logger
}

// New 创建 Tools。fallback 是找不到答案时返回的提示语。
func New(s *service.KnowledgeService, fallback string, log *logger.Logger) *Tools {
	return &Tools{service: s, fallback: fallback, logger: log}
}

// NewServer 创建注册了全部工具的 MCP 服务器。
func NewServer(name, version string, t *Tools) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(false),
	)
	t.Register(s)
	return s
}

// Register 在 MCP 服务器上注册 ask、teach、list_knowledge。
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool(ToolAsk,
		mcp.WithDescription("Ask the knowledge base a question and get the stored answer"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to answer, e.g. 'Where is Lagos?'"),
		),
	), t.Ask)

	s.AddTool(mcp.NewTool(ToolTeach,
		mcp.WithDescription("Teach the knowledge base a new question and answer pair"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to learn"),
		),
		mcp.WithString("answer",
			mcp.Required(),
			mcp.Description("The answer to store, e.g. 'Lagos is past Ibadan'"),
		),
	), t.Teach)

	s.AddTool(mcp.NewTool(ToolListKnowledge,
		mcp.WithDescription("List every stored question and answer pair as JSON"),
	), t.ListKnowledge)
}

// Ask 处理 ask 工具调用。
func (t *Tools) Ask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	answer, ok, err := t.service.Answer(ctx, question)
	if err != nil {
		return t.toolError("ask", err), nil
	}
	if !ok {
		answer = t.fallback
	}
	return mcp.NewToolResultText(answer), nil
}

// Teach 处理 teach 工具调用。
func (t *Tools) Teach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	answer, err := request.RequireString("answer")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := t.service.Learn(ctx, question, answer)
	if err != nil {
		return t.toolError("teach", err), nil
	}
	return mcp.NewToolResultText(result.Status.Message()), nil
}

// ListKnowledge 处理 list_knowledge 工具调用。
func (t *Tools) ListKnowledge(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := t.service.ListAll(ctx)
	if err != nil {
		return t.toolError("list_knowledge", err), nil
	}
	if entries == nil {
		entries = []models.QAEntry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode knowledge: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError 把服务错误转换为工具错误结果。非输入错误只返回概要信息。
func (t *Tools) toolError(tool string, err error) *mcp.CallToolResult {
	if errors.Is(err, service.ErrInvalidInput) {
		return mcp.NewToolResultError(err.Error())
	}
	if t.logger != nil {
		t.logger.WithPayload(map[string]interface{}{"tool": tool}).
			WithError(models.ErrorInfo{Message: err.Error(), Type: "ToolError"}).
			Error("tool call failed")
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: knowledge store unavailable", tool))
}
