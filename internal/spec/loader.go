package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/invopop/yaml"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// ErrInvalidSpecification is matched by every error that rejects input text
// as neither the current nor the legacy grammar.
var ErrInvalidSpecification = errors.New("invalid specification")

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Is reports parse and conversion failures as ErrInvalidSpecification.
func (e *SpecError) Is(target error) bool {
	return target == ErrInvalidSpecification && (e.Code == ParseError || e.Code == ConversionError)
}

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// Logger receives conversion and validation warnings. Nil discards them.
	Logger *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithLogger(l *slog.Logger) Option       { return func(s *Settings) { s.Logger = l } }

func (s Settings) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func resolveSettings(opts []Option) Settings {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return settings
}

// Version is the grammar family a document declares.
type Version int

const (
	VersionInvalid Version = iota
	VersionCurrent
	VersionLegacy
)

func (v Version) String() string {
	switch v {
	case VersionCurrent:
		return "current"
	case VersionLegacy:
		return "legacy"
	}
	return "invalid"
}

// DetectVersion classifies a decoded document by its version field: an
// "openapi" value in the 3.x family is current, a "swagger" value in the 2.x
// family is legacy, anything else is invalid.
func DetectVersion(root map[string]any) Version {
	if v, ok := root["openapi"]; ok && strings.HasPrefix(versionString(v), "3.") {
		return VersionCurrent
	}
	if v, ok := root["swagger"]; ok && strings.HasPrefix(versionString(v), "2.") {
		return VersionLegacy
	}
	return VersionInvalid
}

// YAML readers hand unquoted "3.0" back as a number.
func versionString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case int:
		return strconv.Itoa(t) + ".0"
	}
	return ""
}

// Load reads a document from a filesystem path or an http/https URL and
// parses it with Parse. file:// URLs are blocked.
func Load(ctx context.Context, input string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	settings := resolveSettings(opts)

	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""
	if uerr == nil && strings.EqualFold(u.Scheme, "file") {
		return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
	}

	var raw []byte
	location := input
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		body, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		raw = body
	} else {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
		}
		location = abs
		body, err := os.ReadFile(abs)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
		}
		raw = body
	}

	doc, err := Parse(raw, opts...)
	if err != nil {
		var se *SpecError
		if errors.As(err, &se) && se.Location == "" {
			se.Location = location
		}
		return nil, err
	}
	settings.logger().Debug("loaded document", "location", location, "paths", len(doc.Paths))
	return doc, nil
}

// Parse decodes YAML or JSON text in either grammar. Legacy documents are
// converted to the current grammar. The result is not normalized; see Import.
func Parse(data []byte, opts ...Option) (*Document, error) {
	settings := resolveSettings(opts)
	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
	}
	var root map[string]any
	if err := json.Unmarshal(jsonData, &root); err != nil || root == nil {
		return nil, &SpecError{Code: ParseError, Message: "parse spec: document is not an object", Cause: err}
	}

	switch DetectVersion(root) {
	case VersionCurrent:
		if _, isString := root["openapi"].(string); !isString {
			root["openapi"] = versionString(root["openapi"])
			if jsonData, err = json.Marshal(root); err != nil {
				return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("parse spec: %v", err), Cause: err}
			}
		}
		var doc Document
		if err := json.Unmarshal(jsonData, &doc); err != nil {
			return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("decode spec: %v", err), Cause: err}
		}
		return &doc, nil
	case VersionLegacy:
		doc, err := convertLegacy(root, settings.logger())
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Cause: err}
		}
		return doc, nil
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')"}
	}
}

// Import parses text and returns it in canonical form, ready for editing.
func Import(data []byte, opts ...Option) (*Document, error) {
	doc, err := Parse(data, opts...)
	if err != nil {
		return nil, err
	}
	return PreProcess(doc), nil
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			defer resp.Body.Close()
			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
			} else {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
		}
		settings.logger().Debug("fetch retry", "url", rawURL, "attempt", i+1, "error", lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}
