package dto

import (
	"bytes"
	"encoding/json"
	"time"

	dom "todoapi/internal/domain"
)

// CreateTodoRequest is the JSON body for POST /api/todos.
type CreateTodoRequest struct {
	Title     string `json:"title" example:"Write tests"`
	Completed bool   `json:"completed" example:"false"`
}

// UpdateTodoRequest is the JSON body for PATCH /api/todos/{id}. Absent fields stay unchanged.
type UpdateTodoRequest struct {
	Title     *string `json:"title" example:"Write more tests"`
	Completed *bool   `json:"completed" example:"true"`
}

// Patch converts the request to a domain patch.
func (r UpdateTodoRequest) Patch() dom.TodoPatch {
	return dom.TodoPatch{Title: r.Title, Completed: r.Completed}
}

type TodoResponse struct {
	ID        int64      `json:"id" example:"1"`
	Title     string     `json:"title" example:"Write tests"`
	Completed bool       `json:"completed" example:"false"`
	CreatedAt *time.Time `json:"created_at" example:"2024-05-01T12:30:00.123456Z"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"title is required"`
}

// fields decodes body as a JSON object. Anything that is not an object,
// including an empty or malformed body, counts as {}.
func fields(body []byte) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil || m == nil {
		return map[string]json.RawMessage{}
	}
	return m
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stringField returns (value, present). A present non-string value is a validation error.
func stringField(m map[string]json.RawMessage, key, nullMsg string) (*string, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	if isNull(raw) {
		return nil, dom.NewValidationError(nullMsg)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, dom.NewValidationError(key + " must be a string")
	}
	return &s, nil
}

func boolField(m map[string]json.RawMessage, key string) (*bool, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	var b bool
	if isNull(raw) || json.Unmarshal(raw, &b) != nil {
		return nil, dom.NewValidationError(key + " must be a boolean")
	}
	return &b, nil
}

// ParseCreateTodo reads a create body. Title emptiness is left to the service.
func ParseCreateTodo(body []byte) (CreateTodoRequest, error) {
	m := fields(body)
	var req CreateTodoRequest
	title, err := stringField(m, "title", "title is required")
	if err != nil {
		return req, err
	}
	if title != nil {
		req.Title = *title
	}
	completed, err := boolField(m, "completed")
	if err != nil {
		return req, err
	}
	if completed != nil {
		req.Completed = *completed
	}
	return req, nil
}

// ParseUpdateTodo reads a patch body.
func ParseUpdateTodo(body []byte) (UpdateTodoRequest, error) {
	m := fields(body)
	var req UpdateTodoRequest
	var err error
	if req.Title, err = stringField(m, "title", "title cannot be empty"); err != nil {
		return UpdateTodoRequest{}, err
	}
	if req.Completed, err = boolField(m, "completed"); err != nil {
		return UpdateTodoRequest{}, err
	}
	return req, nil
}

func TodoToResponse(t dom.Todo) TodoResponse {
	resp := TodoResponse{ID: t.ID, Title: t.Title, Completed: t.Completed}
	if !t.CreatedAt.IsZero() {
		ca := t.CreatedAt
		resp.CreatedAt = &ca
	}
	return resp
}

func TodosToResponses(list []dom.Todo) []TodoResponse {
	out := make([]TodoResponse, len(list))
	for i := range list {
		out[i] = TodoToResponse(list[i])
	}
	return out
}
