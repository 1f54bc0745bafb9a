package dto

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	MsgRequired     = "Missing data for required field."
	MsgNotString    = "Not a valid string."
	MsgNotBoolean   = "Not a valid boolean."
	MsgNotDateTime  = "Not a valid datetime."
	MsgNull         = "Field may not be null."
	MsgBlank        = "Field may not be blank."
	MsgUnknown      = "Unknown field."
	MsgInvalidInput = "Invalid input type."

	// SchemaField keys errors about the body as a whole.
	SchemaField = "_schema"
)

// ValidationError maps field names to the messages raised for them.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindDateTime
)

type fieldRule struct {
	Name     string
	Kind     fieldKind
	Required bool
	NotBlank bool
	Nullable bool
}

var createRules = []fieldRule{
	{Name: "title", Kind: kindString, Required: true, NotBlank: true},
	{Name: "description", Kind: kindString, Required: true},
	{Name: "completed", Kind: kindBool},
	{Name: "deadline_at", Kind: kindDateTime, Nullable: true},
}

var updateRules = []fieldRule{
	{Name: "title", Kind: kindString, NotBlank: true},
	{Name: "description", Kind: kindString},
	{Name: "completed", Kind: kindBool},
	{Name: "deadline_at", Kind: kindDateTime, Nullable: true},
}

// evaluate checks body against rules and returns the raw value of every
// field that passed. A nil error means every rule held.
func evaluate(body []byte, rules []fieldRule) (map[string]json.RawMessage, error) {
	verr := &ValidationError{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		verr.add(SchemaField, MsgInvalidInput)
		return nil, verr
	}

	known := make(map[string]struct{}, len(rules))
	ok := make(map[string]json.RawMessage, len(rules))
	for _, rule := range rules {
		known[rule.Name] = struct{}{}
		v, present := raw[rule.Name]
		if !present {
			if rule.Required {
				verr.add(rule.Name, MsgRequired)
			}
			continue
		}
		if msg := rule.check(v); msg != "" {
			verr.add(rule.Name, msg)
			continue
		}
		ok[rule.Name] = v
	}

	unknown := make([]string, 0)
	for name := range raw {
		if _, found := known[name]; !found {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		verr.add(name, MsgUnknown)
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return ok, nil
}

// check returns the message for the first rule v breaks, or "".
func (r fieldRule) check(v json.RawMessage) string {
	if strings.TrimSpace(string(v)) == "null" {
		if r.Nullable {
			return ""
		}
		return MsgNull
	}
	switch r.Kind {
	case kindString:
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return MsgNotString
		}
		if r.NotBlank && strings.TrimSpace(s) == "" {
			return MsgBlank
		}
	case kindBool:
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return MsgNotBoolean
		}
	case kindDateTime:
		var d DeadlineAt
		if err := json.Unmarshal(v, &d); err != nil {
			return MsgNotDateTime
		}
	}
	return ""
}

// DecodeCreateTodo validates a create body. Failures are *ValidationError.
func DecodeCreateTodo(body []byte) (CreateTodoRequest, error) {
	fields, err := evaluate(body, createRules)
	if err != nil {
		return CreateTodoRequest{}, err
	}
	var req CreateTodoRequest
	if err := decodeFields(fields, &req); err != nil {
		return CreateTodoRequest{}, err
	}
	return req, nil
}

// DecodeUpdateTodo validates an update body. Failures are *ValidationError.
func DecodeUpdateTodo(body []byte) (UpdateTodoRequest, error) {
	fields, err := evaluate(body, updateRules)
	if err != nil {
		return UpdateTodoRequest{}, err
	}
	var req UpdateTodoRequest
	if err := decodeFields(fields, &req); err != nil {
		return UpdateTodoRequest{}, err
	}
	return req, nil
}

// decodeFields re-encodes the accepted fields and unmarshals them into dst.
func decodeFields(fields map[string]json.RawMessage, dst any) error {
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}
	return nil
}
