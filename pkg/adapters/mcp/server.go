// Package mcp exposes the funnel to agents over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/setter"
	"github.com/aretw0/setter/internal/presentation/graph"
	"github.com/aretw0/setter/pkg/adapters/rules"
	"github.com/aretw0/setter/pkg/dialogue"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/signals"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FunnelURI is the resource holding the Mermaid funnel graph.
const FunnelURI = "setter://funnel"

// StepArgs are the arguments of the step tool.
type StepArgs struct {
	State      string         `json:"state"`
	Message    string         `json:"message"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// StepResult aligns with the HTTP /step response.
type StepResult struct {
	NextState  domain.State   `json:"next_state" jsonschema_description:"The state the funnel moved to"`
	Reason     string         `json:"reason" jsonschema_description:"Which guard fired"`
	Attributes map[string]any `json:"attributes" jsonschema_description:"The updated attribute bag"`
	Changes    map[string]any `json:"changes,omitempty" jsonschema_description:"Attributes changed by this step"`
}

// ClassifyArgs are the arguments of the classify_message tool.
type ClassifyArgs struct {
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

// ClassifyResult carries the detector signals and an optional label.
type ClassifyResult struct {
	Signals signals.Signals `json:"signals" jsonschema_description:"Detector output for the message"`
	Label   *domain.Label   `json:"label,omitempty" jsonschema_description:"Extractor label when a category was given"`
}

// ProcessArgs are the arguments of the process_message tool.
type ProcessArgs struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Server wraps the dialogue service as an MCP server.
type Server struct {
	dialogue  *dialogue.Service
	extractor ports.Extractor
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

func WithExtractor(e ports.Extractor) Option {
	return func(s *Server) {
		if e != nil {
			s.extractor = e
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc *dialogue.Service, opts ...Option) *Server {
	s := &Server{
		dialogue:  svc,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("setter-mcp", setter.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = rules.NewExtractor(svc.Engine().Detector())
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("classify_message",
		mcp.WithDescription("Run the signal detectors on a message. With a category (location, relationship_goal, fitness, finance) also extract that attribute."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The lead's message")),
		mcp.WithString("category", mcp.Description("Optional extractor category")),
		mcp.WithOutputSchema[ClassifyResult](),
	), mcp.NewStructuredToolHandler(s.handleClassify))

	s.mcpServer.AddTool(mcp.NewTool("step",
		mcp.WithDescription("Compute the next funnel state for a message. Stateless: nothing is stored and no reply is generated."),
		mcp.WithString("state", mcp.Description("Current funnel state, ENTRY when omitted")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The lead's message")),
		mcp.WithObject("attributes", mcp.Description("Current attribute bag")),
		mcp.WithOutputSchema[StepResult](),
	), mcp.NewStructuredToolHandler(s.handleStep))

	s.mcpServer.AddTool(mcp.NewTool("process_message",
		mcp.WithDescription("Run a full conversational turn for a user: the session is loaded, stepped, answered and saved."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Conversation owner")),
		mcp.WithString("message", mcp.Required(), mcp.Description("The lead's message")),
		mcp.WithOutputSchema[dialogue.Response](),
	), mcp.NewStructuredToolHandler(s.handleProcess))
}

func (s *Server) handleClassify(ctx context.Context, _ mcp.CallToolRequest, args ClassifyArgs) (ClassifyResult, error) {
	msg, err := dialogue.Sanitize(args.Message, 0)
	if err != nil {
		return ClassifyResult{}, fmt.Errorf("input rejected: %w", err)
	}

	res := ClassifyResult{Signals: s.dialogue.Engine().Detector().Detect(msg)}
	if args.Category != "" {
		label, err := s.extractor.Extract(ctx, msg, domain.Category(args.Category))
		if err != nil {
			s.logger.Warn("MCP classify: extraction failed", "category", args.Category, "err", err)
		}
		res.Label = &label
	}
	return res, nil
}

func (s *Server) handleStep(ctx context.Context, _ mcp.CallToolRequest, args StepArgs) (StepResult, error) {
	msg, err := dialogue.Sanitize(args.Message, 0)
	if err != nil {
		return StepResult{}, fmt.Errorf("input rejected: %w", err)
	}
	state := domain.InitialState
	if args.State != "" {
		if state, err = domain.ParseState(args.State); err != nil {
			return StepResult{}, err
		}
	}

	attrs := domain.AttributesFromMap(args.Attributes)
	evt, err := s.dialogue.Engine().Transition(ctx, "", state, attrs, msg)
	if err != nil {
		return StepResult{}, fmt.Errorf("step failed: %w", err)
	}
	return StepResult{
		NextState:  evt.To,
		Reason:     evt.Reason,
		Attributes: attrs.ToMap(),
		Changes:    evt.Changes,
	}, nil
}

func (s *Server) handleProcess(ctx context.Context, _ mcp.CallToolRequest, args ProcessArgs) (dialogue.Response, error) {
	resp, err := s.dialogue.Process(ctx, dialogue.Request{UserID: args.UserID, Message: args.Message})
	if err != nil {
		s.logger.Warn("MCP process_message failed", "user_id", args.UserID, "err", err)
		return dialogue.Response{}, err
	}
	return *resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FunnelURI, "Sales funnel graph",
		mcp.WithResourceDescription("Mermaid flowchart of every funnel state and transition"),
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FunnelURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(funnel.Edges(), nil),
			},
		}, nil
	})
}
