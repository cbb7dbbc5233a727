package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/setter/pkg/domain"
	"github.com/aretw0/setter/pkg/ports"
)

// Mask replaces every redacted span.
const Mask = "***"

// DefaultPIIPatterns match email addresses and phone numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d\s().-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.HistoryStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks spans of message content matching the patterns
// before they are written to the history log. The caller's messages are not
// modified. It panics on an invalid pattern.
func NewPIIMiddleware(patternStrings []string) HistoryMiddleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Append(ctx context.Context, sessionID string, msgs ...domain.Message) error {
	masked := make([]domain.Message, len(msgs))
	for i, msg := range msgs {
		masked[i] = domain.Message{Role: msg.Role, Content: m.redact(msg.Content)}
	}
	return m.next.Append(ctx, sessionID, masked...)
}

func (m *piiMiddleware) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	return m.next.History(ctx, sessionID, limit)
}

func (m *piiMiddleware) Clear(ctx context.Context, sessionID string) error {
	return m.next.Clear(ctx, sessionID)
}

func (m *piiMiddleware) redact(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}
