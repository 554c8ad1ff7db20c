// Package steplog scopes log writes to wizard steps: every message is
// prefixed with the step's human-readable name and may be rendered from a
// keyed message template with {param} substitution. It is a pure
// formatting layer; every write delegates to the severity router.
package steplog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/demo-builder/duolog/internal/sink"
)

// Logger is the slice of the severity router this package consumes.
type Logger interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string, cause error)
	Debug(msg string, data ...any)
	Trace(msg string, data ...any)
}

// Option configures a StepLogger.
type Option func(*StepLogger)

// WithSteps merges caller-supplied step display names over the configured
// table. Caller entries win.
func WithSteps(steps map[string]string) Option {
	return func(s *StepLogger) {
		for id, name := range steps {
			s.steps[id] = name
		}
	}
}

// WithTemplates sets the template store: section → key → template text.
func WithTemplates(templates map[string]map[string]string) Option {
	return func(s *StepLogger) { s.templates = templates }
}

// StepLogger prefixes messages with step names and renders templates. It
// holds a non-owning reference to the router and must not outlive it.
type StepLogger struct {
	log       Logger
	steps     map[string]string
	templates map[string]map[string]string
}

// New creates a StepLogger delegating to the given logger.
func New(log Logger, opts ...Option) *StepLogger {
	s := &StepLogger{
		log:   log,
		steps: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StepName resolves a step id to its display name. Unregistered ids fall
// back to title-casing the hyphenated id: "my-custom-step" → "My Custom Step".
func (s *StepLogger) StepName(id string) string {
	if name, ok := s.steps[id]; ok {
		return name
	}
	words := strings.ReplaceAll(id, "-", " ")
	return cases.Title(language.English).String(words)
}

// Log renders the keyed message with the given params and writes it at
// info level, prefixed with the step's display name.
func (s *StepLogger) Log(stepID, key string, params map[string]any) {
	s.LogAt(sink.LevelInfo, stepID, key, params)
}

// LogAt is Log at a caller-chosen severity.
func (s *StepLogger) LogAt(level sink.Level, stepID, key string, params map[string]any) {
	msg := fmt.Sprintf("[%s] %s", s.StepName(stepID), s.Render(key, params))
	switch level {
	case sink.LevelTrace:
		s.log.Trace(msg)
	case sink.LevelDebug:
		s.log.Debug(msg)
	case sink.LevelWarn:
		s.log.Warn(msg)
	case sink.LevelError:
		s.log.Error(msg, nil)
	default:
		s.log.Info(msg)
	}
}

// placeholderRe matches {param} slots in templates.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Render resolves a template key ("section.key", or a bare key searched
// across sections) and substitutes {param} placeholders. Placeholders with
// no matching param are deleted, not left literal. An unknown key renders
// as the capitalized, underscore-to-space form of the key itself, with a
// diagnostic note that the template was missing.
func (s *StepLogger) Render(key string, params map[string]any) string {
	tmpl, ok := s.lookup(key)
	if !ok {
		s.log.Debug("no message template for key " + key)
		return capitalize(strings.ReplaceAll(key, "_", " "))
	}
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// lookup finds a template by "section.key" or by bare key across sections
// (sections searched in sorted order for determinism).
func (s *StepLogger) lookup(key string) (string, bool) {
	if section, rest, ok := strings.Cut(key, "."); ok {
		tmpl, found := s.templates[section][rest]
		return tmpl, found
	}
	sections := make([]string, 0, len(s.templates))
	for name := range s.templates {
		sections = append(sections, name)
	}
	sort.Strings(sections)
	for _, name := range sections {
		if tmpl, ok := s.templates[name][key]; ok {
			return tmpl, true
		}
	}
	return "", false
}

// capitalize upper-cases the first rune.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
