package core

import "fmt"

// Error is the serializable error value carried on workflow and step state.
type Error struct {
	Message string         `json:"message"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func NewError(err error, code string, details map[string]any) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: err.Error(),
		Code:    code,
		Details: details,
	}
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *Error) AsMap() map[string]any {
	out := map[string]any{"message": e.Message}
	if e.Code != "" {
		out["code"] = e.Code
	}
	if len(e.Details) > 0 {
		out["details"] = e.Details
	}
	return out
}
