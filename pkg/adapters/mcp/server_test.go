package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/setter/pkg/adapters/memory"
	"github.com/aretw0/setter/pkg/dialogue"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	svc := dialogue.New(session.NewManager(memory.NewStore()), funnel.New())
	return NewServer(svc)
}

func rpc(t *testing.T, s *Server, method string, params any) string {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	out, err := json.Marshal(s.mcpServer.HandleMessage(context.Background(), raw))
	require.NoError(t, err)
	return string(out)
}

func TestHandleStep(t *testing.T) {
	s := newTestServer()

	res, err := s.handleStep(context.Background(), mcp.CallToolRequest{}, StepArgs{
		State:   "QUAL_LOCATION",
		Message: "somewhere in Brazil",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateRouteLowTicket, res.NextState)
	assert.Equal(t, funnel.ReasonRegionOther, res.Reason)
	assert.Equal(t, "OTHER", res.Attributes["location_region"])

	res, err = s.handleStep(context.Background(), mcp.CallToolRequest{}, StepArgs{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateEntry, res.NextState)

	_, err = s.handleStep(context.Background(), mcp.CallToolRequest{}, StepArgs{State: "NOPE", Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestHandleClassify(t *testing.T) {
	s := newTestServer()

	res, err := s.handleClassify(context.Background(), mcp.CallToolRequest{}, ClassifyArgs{
		Message:  "just looking for something casual",
		Category: "relationship_goal",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GoalCasual, res.Signals.RelationshipGoal)
	require.NotNil(t, res.Label)
	assert.Equal(t, "CASUAL", res.Label.Value)

	res, err = s.handleClassify(context.Background(), mcp.CallToolRequest{}, ClassifyArgs{Message: "hello"})
	require.NoError(t, err)
	assert.Nil(t, res.Label)
}

func TestHandleProcess(t *testing.T) {
	s := newTestServer()

	res, err := s.handleProcess(context.Background(), mcp.CallToolRequest{}, ProcessArgs{UserID: "agent-1", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateEntry, res.NextState)
	assert.NotEmpty(t, res.Reply)

	_, err = s.handleProcess(context.Background(), mcp.CallToolRequest{}, ProcessArgs{Message: "hi"})
	assert.ErrorIs(t, err, domain.ErrEmptyUserID)
}

func TestToolsAndResources(t *testing.T) {
	s := newTestServer()

	tools := rpc(t, s, "tools/list", map[string]any{})
	for _, name := range []string{"classify_message", "step", "process_message"} {
		assert.Contains(t, tools, `"name":"`+name+`"`)
	}

	resource := rpc(t, s, "resources/read", map[string]any{"uri": FunnelURI})
	assert.Contains(t, resource, "graph TD")
	assert.Contains(t, resource, FunnelURI)
}
