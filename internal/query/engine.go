// Package query locates values inside decoded JSON documents using JQ.
//
// A location is either a dotted path ("data.items", "meta.0.total") or, when
// it starts with '.', a full JQ expression (".result | .entries").
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/itchyny/gojq"
)

// pathProgram resolves a dotted path passed in as $path.
const pathProgram = "getpath($path)"

// Engine evaluates locations against decoded JSON values. It is safe for
// concurrent use; compiled expressions are memoized.
type Engine struct {
	pathCode *gojq.Code

	mu       sync.RWMutex
	compiled map[string]*gojq.Code
}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	q, err := gojq.Parse(pathProgram)
	if err != nil {
		panic(fmt.Sprintf("query: parsing path program: %v", err))
	}
	code, err := gojq.Compile(q, gojq.WithVariables([]string{"$path"}))
	if err != nil {
		panic(fmt.Sprintf("query: compiling path program: %v", err))
	}
	return &Engine{
		pathCode: code,
		compiled: make(map[string]*gojq.Code),
	}
}

// Lookup returns the first value at location. found is false when the
// location is absent or null; a location that does not fit the document's
// shape (indexing a string, for example) returns an error. An empty location
// returns the document itself.
func (e *Engine) Lookup(doc any, location string) (value any, found bool, err error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return doc, doc != nil, nil
	}

	var iter gojq.Iter
	if strings.HasPrefix(location, ".") {
		code, err := e.compile(location)
		if err != nil {
			return nil, false, err
		}
		iter = code.Run(doc)
	} else {
		iter = e.pathCode.Run(doc, SplitPath(location))
	}

	v, ok := iter.Next()
	if !ok {
		return nil, false, nil
	}
	if err, isErr := v.(error); isErr {
		return nil, false, fmt.Errorf("%s", formatJQError(location, err))
	}
	return v, v != nil, nil
}

// SplitPath turns "a.b.0" into the JQ path ["a","b",0].
func SplitPath(location string) []any {
	parts := strings.Split(location, ".")
	path := make([]any, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if n, err := strconv.Atoi(p); err == nil && n >= 0 {
			path = append(path, n)
			continue
		}
		path = append(path, p)
	}
	return path
}

func (e *Engine) compile(expression string) (*gojq.Code, error) {
	e.mu.RLock()
	code, ok := e.compiled[expression]
	e.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err = gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}

	e.mu.Lock()
	e.compiled[expression] = code
	e.mu.Unlock()
	return code, nil
}

// ValidateExpression checks that a location can be evaluated. Dotted paths
// are always valid; JQ expressions must parse and compile.
func (e *Engine) ValidateExpression(location string) error {
	location = strings.TrimSpace(location)
	if !strings.HasPrefix(location, ".") {
		return nil
	}
	query, err := gojq.Parse(location)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return fmt.Errorf("invalid jq expression: %w", err)
	}
	if _, err := gojq.Compile(query); err != nil {
		return fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return nil
}

// formatJQError adds a hint to common runtime errors. gojq reports these as
// plain errors, so the hints are chosen by message text.
func formatJQError(label string, err error) string {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()
	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the path may not exist in this response)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array)"
	}
	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}
