package spec

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Issue is one finding reported by Lint.
type Issue struct {
	Code        ErrorCode `json:"code"`
	Severity    string    `json:"severity"`
	Message     string    `json:"message"`
	JSONPointer string    `json:"pointer,omitempty"`
}

// Lint runs kin-openapi's structural validation over the exported form of
// doc. Findings never block editing; an empty slice means none were found.
func Lint(ctx context.Context, doc *Document, opts ...Option) ([]Issue, error) {
	logger := resolveSettings(opts).logger()
	data, err := json.Marshal(PostProcess(doc))
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	t, err := loader.LoadFromData(data)
	if err != nil {
		return []Issue{toIssue(err)}, nil
	}
	verr := t.Validate(ctx, openapi3.DisableExamplesValidation())
	if verr == nil {
		return []Issue{}, nil
	}
	var issues []Issue
	var me openapi3.MultiError
	if errors.As(verr, &me) {
		for _, e := range me {
			issues = append(issues, toIssue(e))
		}
	} else {
		issues = append(issues, toIssue(verr))
	}
	for _, is := range issues {
		logger.Warn("validation finding", "severity", is.Severity, "pointer", is.JSONPointer, "message", is.Message)
	}
	return issues, nil
}

func toIssue(err error) Issue {
	code := ValidationError
	lower := strings.ToLower(err.Error())
	// Heuristics: some loader errors are parse errors.
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	severity := "error"
	if canProceedDespiteValidation(err) {
		severity = "warning"
	}
	return Issue{Code: code, Severity: severity, Message: err.Error(), JSONPointer: extractJSONPointer(err)}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	// Fallback: parse from error message if a pointer literal appears.
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for findings a best-effort build
// can live with, such as unresolved $ref entries.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "found unresolved ref")
}
