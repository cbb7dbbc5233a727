package dialogue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/setter/pkg/adapters/rules"
	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/funnel"
	"github.com/aretw0/setter/pkg/ports"
	"github.com/aretw0/setter/pkg/prompts"
	"github.com/aretw0/setter/pkg/session"
)

// DefaultHistoryWindow is how many past messages the generator sees.
const DefaultHistoryWindow = 10

// Request is one inbound message. CurrentState and Attributes, when set,
// take precedence over the persisted session.
type Request struct {
	UserID       string         `json:"user_id"`
	Message      string         `json:"message"`
	CurrentState *domain.State  `json:"current_state,omitempty"`
	Attributes   map[string]any `json:"user_attributes,omitempty"`
}

// Response is the outcome of a turn.
type Response struct {
	Reply               string         `json:"reply"`
	NextState           domain.State   `json:"next_state"`
	ExtractedAttributes map[string]any `json:"extracted_attributes"`

	Transition *domain.TransitionEvent `json:"-"`
}

// Observer receives per-turn measurements.
type Observer interface {
	ObserveExtraction(category domain.Category, resolved bool)
	ObserveProcess(elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveExtraction(domain.Category, bool) {}
func (nopObserver) ObserveProcess(time.Duration, error)     {}

// Service wires the funnel engine to storage and the model ports.
type Service struct {
	sessions  *session.Manager
	engine    *funnel.Engine
	history   ports.HistoryStore
	extractor ports.Extractor
	generator ports.Generator
	fallback  ports.Generator
	catalog   *prompts.Catalog
	observer  Observer
	logger    *slog.Logger

	historyWindow int
	maxInputSize  int
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistory enables the conversation log. Without it the generator sees
// only the current message.
func WithHistory(h ports.HistoryStore) Option {
	return func(s *Service) { s.history = h }
}

// WithExtractor replaces the phrasebook extractor.
func WithExtractor(e ports.Extractor) Option {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithGenerator replaces the template generator. The template generator
// remains the fallback.
func WithGenerator(g ports.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

func WithCatalog(c *prompts.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHistoryWindow sets how many past messages the generator sees.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithMaxInputSize overrides the message size limit in bytes.
func WithMaxInputSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxInputSize = n
		}
	}
}

// New creates a service. By default it extracts with the engine's
// phrasebook and replies with the catalog's canned lines.
func New(sessions *session.Manager, engine *funnel.Engine, opts ...Option) *Service {
	fallback := rules.NewGenerator()
	s := &Service{
		sessions:      sessions,
		engine:        engine,
		extractor:     rules.NewExtractor(engine.Detector()),
		generator:     fallback,
		fallback:      fallback,
		catalog:       prompts.Default(),
		observer:      nopObserver{},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		historyWindow: DefaultHistoryWindow,
		maxInputSize:  MaxInputSizeFromEnv(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the funnel engine.
func (s *Service) Engine() *funnel.Engine { return s.engine }

// Process runs one turn. Errors are domain.ErrEmptyUserID,
// domain.ErrInvalidState, ErrInputTooLarge and ErrInvalidUTF8 for bad
// requests; anything else comes from storage.
func (s *Service) Process(ctx context.Context, req Request) (resp *Response, err error) {
	start := s.now()
	defer func() { s.observer.ObserveProcess(s.now().Sub(start), err) }()

	if req.UserID == "" {
		return nil, domain.ErrEmptyUserID
	}
	msg, err := Sanitize(req.Message, s.maxInputSize)
	if err != nil {
		return nil, err
	}
	var override domain.State
	if req.CurrentState != nil {
		if override, err = domain.ParseState(string(*req.CurrentState)); err != nil {
			return nil, err
		}
	}

	err = s.sessions.WithLock(ctx, req.UserID, func(ctx context.Context) error {
		sess, err := s.sessions.LoadOrNew(ctx, req.UserID)
		if err != nil {
			return err
		}
		if override != "" {
			sess.State = override
		}
		if req.Attributes != nil {
			sess.Attributes = domain.AttributesFromMap(req.Attributes)
		}

		s.extract(ctx, req.UserID, sess.State, sess.Attributes, msg)

		evt, err := s.engine.Transition(ctx, req.UserID, sess.State, sess.Attributes, msg)
		if err != nil {
			return err
		}

		reply := s.reply(ctx, req.UserID, evt.To, msg)

		if s.history != nil {
			if err := s.history.Append(ctx, req.UserID,
				domain.Message{Role: domain.RoleUser, Content: msg},
				domain.Message{Role: domain.RoleAssistant, Content: reply},
			); err != nil {
				return fmt.Errorf("failed to append history: %w", err)
			}
		}

		sess.State = evt.To
		sess.UpdatedAt = s.now().UTC()
		if err := s.sessions.Store().Save(ctx, req.UserID, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		resp = &Response{
			Reply:               reply,
			NextState:           evt.To,
			ExtractedAttributes: sess.Attributes.ToMap(),
			Transition:          evt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// extract resolves the current qualification state's attribute before the
// engine runs. Failures leave the attribute unresolved.
func (s *Service) extract(ctx context.Context, userID string, state domain.State, attrs *domain.Attributes, msg string) {
	category, ok := state.Category()
	if !ok || attrs.HardStopTriggered || attrs.Resolved(category) || strings.TrimSpace(msg) == "" {
		return
	}

	label, err := s.extractor.Extract(ctx, msg, category)
	if err != nil {
		s.logger.Warn("extraction failed, treating as unresolved",
			"user_id", userID,
			"category", category,
			"err", err,
		)
		s.observer.ObserveExtraction(category, false)
		return
	}
	s.observer.ObserveExtraction(category, label.Resolved)
	attrs.Apply(label)
}

// reply asks the generator for the next message, falling back to the
// catalog's canned line.
func (s *Service) reply(ctx context.Context, userID string, next domain.State, msg string) string {
	var past []domain.Message
	if s.history != nil {
		h, err := s.history.History(ctx, userID, s.historyWindow)
		if err != nil {
			s.logger.Warn("failed to read history", "user_id", userID, "err", err)
		}
		past = h
	}

	prompt := s.catalog.Build(next, past, msg)
	reply, err := s.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(reply) != "" {
		return reply
	}
	if err != nil {
		s.logger.Warn("generation failed, using fallback line",
			"user_id", userID,
			"state", next,
			"err", err,
		)
	}

	reply, err = s.fallback.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("no fallback line", "state", next, "err", err)
	}
	return reply
}

// Reset forgets everything about a user.
func (s *Service) Reset(ctx context.Context, userID string) error {
	return s.sessions.WithLock(ctx, userID, func(ctx context.Context) error {
		if s.history != nil {
			if err := s.history.Clear(ctx, userID); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
		}
		if err := s.sessions.Store().Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
