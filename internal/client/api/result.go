package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Result is the normalised outcome of one backend call. Sagas branch on
// IsSuccess and surface Message to the user.
type Result struct {
	IsSuccess bool            `json:"isSuccess"`
	Status    int             `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Code      string          `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func newResult(status int, body []byte) Result {
	res := Result{Status: status, IsSuccess: status >= 200 && status < 300}
	if res.IsSuccess {
		if len(body) > 0 {
			res.Data = json.RawMessage(body)
			var msg struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(body, &msg) == nil {
				res.Message = msg.Message
			}
		}
		return res
	}
	var env errorEnvelope
	if json.Unmarshal(body, &env) == nil {
		res.Message = strings.TrimSpace(env.Error.Message)
		res.Code = env.Error.Code
	}
	if res.Message == "" {
		res.Message = http.StatusText(status)
	}
	return res
}

func failure(err error) Result {
	return Result{Message: err.Error()}
}

// Decode unmarshals Data[key] into out, or the whole body when key is empty.
func (r Result) Decode(key string, out any) error {
	if !r.IsSuccess {
		return r.Err()
	}
	if len(r.Data) == 0 {
		return errors.New("empty response body")
	}
	if key == "" {
		return json.Unmarshal(r.Data, out)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	raw, ok := fields[key]
	if !ok {
		return fmt.Errorf("response has no %q field", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Err is nil on success and otherwise carries the failure message.
func (r Result) Err() error {
	if r.IsSuccess {
		return nil
	}
	return &Error{Status: r.Status, Code: r.Code, Message: r.Message}
}

type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// decodeInto turns a decode failure into a failed Result so callers only
// ever branch on IsSuccess.
func decodeInto(res Result, key string, out any) Result {
	if !res.IsSuccess {
		return res
	}
	if err := res.Decode(key, out); err != nil {
		res.IsSuccess = false
		res.Message = err.Error()
	}
	return res
}
