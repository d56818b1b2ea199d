package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pathwise/internal/types"
)

// ScriptedClient is an in-process Client driven by per-task handlers.
// It backs the tests of every package that talks to a provider and the
// offline mode of the command.
type ScriptedClient struct {
	mu       sync.Mutex
	handlers map[Task]Handler
	calls    []Call
}

// Handler answers one task.
type Handler func(ctx context.Context, req Request) (*Response, error)

// Call is one recorded request.
type Call struct {
	Task     Task
	Request  Request
	Started  time.Time
	Finished time.Time
	Err      error
}

// NewScriptedClient creates an empty scripted client. Unscripted tasks fail.
func NewScriptedClient() *ScriptedClient {
	return &ScriptedClient{handlers: make(map[Task]Handler)}
}

// On sets the handler for a task and returns the client for chaining.
func (s *ScriptedClient) On(task Task, h Handler) *ScriptedClient {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[task] = h
	return s
}

// Generate implements Client.
func (s *ScriptedClient) Generate(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	s.mu.Lock()
	h, ok := s.handlers[req.Task]
	s.mu.Unlock()

	var resp *Response
	var err error
	if !ok {
		err = fmt.Errorf("no script for task %q", req.Task)
	} else {
		resp, err = h(ctx, req)
	}

	s.mu.Lock()
	s.calls = append(s.calls, Call{Task: req.Task, Request: req, Started: started, Finished: time.Now(), Err: err})
	s.mu.Unlock()
	return resp, err
}

// Calls returns a copy of the recorded calls in completion order.
func (s *ScriptedClient) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns how many times task was requested.
func (s *ScriptedClient) CallCount(task Task) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Task == task {
			n++
		}
	}
	return n
}

// Reply answers with v marshalled to JSON and optional sources.
func Reply(v interface{}, sources ...types.GroundingSource) Handler {
	return func(context.Context, Request) (*Response, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return &Response{Body: data, Sources: sources}, nil
	}
}

// ReplyRaw answers with a literal body.
func ReplyRaw(body string) Handler {
	return func(context.Context, Request) (*Response, error) {
		return &Response{Body: json.RawMessage(body)}, nil
	}
}

// Fail answers with err.
func Fail(err error) Handler {
	return func(context.Context, Request) (*Response, error) {
		return nil, err
	}
}

// Block waits until the context ends and returns its error.
func Block() Handler {
	return func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

// Delay runs h after d, or returns early if the context ends.
func Delay(d time.Duration, h Handler) Handler {
	return func(ctx context.Context, req Request) (*Response, error) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return h(ctx, req)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
