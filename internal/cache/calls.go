package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/reuben-idan/alx-backend-storage/internal/kv"
)

// History list keys are derived from the method identity.
const (
	inputsSuffix  = ":inputs"
	outputsSuffix = ":outputs"
)

// Call is one recorded invocation of an instrumented operation.
type Call struct {
	Input  string
	Output string
}

// CallLog records how often instrumented operations run and with which
// arguments and results. Counters and history live in the store, so
// they survive restarts and are shared across processes. The counter
// key is the method identity itself; the input and output histories
// live under "<method>:inputs" and "<method>:outputs".
type CallLog struct {
	store kv.Store
}

// NewCallLog creates a call log backed by the given store.
func NewCallLog(store kv.Store) *CallLog {
	return &CallLog{store: store}
}

// RecordCall increments the call counter for method and appends the
// rendered input to its input history.
func (l *CallLog) RecordCall(ctx context.Context, method, input string) error {
	if _, err := l.store.Incr(ctx, method); err != nil {
		return fmt.Errorf("failed to count call to %s: %w", method, err)
	}
	if err := l.store.RPush(ctx, method+inputsSuffix, []byte(input)); err != nil {
		return fmt.Errorf("failed to record input for %s: %w", method, err)
	}
	return nil
}

// RecordResult appends the rendered output to the method's output
// history.
func (l *CallLog) RecordResult(ctx context.Context, method, output string) error {
	if err := l.store.RPush(ctx, method+outputsSuffix, []byte(output)); err != nil {
		return fmt.Errorf("failed to record output for %s: %w", method, err)
	}
	return nil
}

// Calls returns how many times method has been invoked. A method that
// was never called counts zero.
func (l *CallLog) Calls(ctx context.Context, method string) (int64, error) {
	data, err := l.store.Get(ctx, method)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read call count for %s: %w", method, err)
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse call count for %s: %w", method, err)
	}
	return n, nil
}

// History returns the recorded input/output pairs for method in call
// order. Pairing stops at the shorter of the two histories, so a call
// whose output was never recorded does not appear.
func (l *CallLog) History(ctx context.Context, method string) ([]Call, error) {
	inputs, err := l.store.LRange(ctx, method+inputsSuffix, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs for %s: %w", method, err)
	}
	outputs, err := l.store.LRange(ctx, method+outputsSuffix, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read outputs for %s: %w", method, err)
	}

	n := len(inputs)
	if len(outputs) < n {
		n = len(outputs)
	}

	calls := make([]Call, 0, n)
	for i := 0; i < n; i++ {
		calls = append(calls, Call{Input: string(inputs[i]), Output: string(outputs[i])})
	}
	return calls, nil
}

// Replay renders a report of every recorded call to method:
//
//	<method> was called <n> times:
//	<method>(<input>) -> <output>
//	...
func (l *CallLog) Replay(ctx context.Context, method string) (string, error) {
	count, err := l.Calls(ctx, method)
	if err != nil {
		return "", err
	}
	calls, err := l.History(ctx, method)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s was called %d times:", method, count)
	for _, call := range calls {
		fmt.Fprintf(&b, "\n%s(%s) -> %s", method, call.Input, call.Output)
	}
	return b.String(), nil
}

// Instrument wraps op so every invocation is recorded in the call log
// under method. The counter increment and the input entry are written
// before op runs; the output entry is written only after op succeeds.
// If op fails, the counter and input stay recorded and no output entry
// is written. Recording failures propagate to the caller.
//
// Histories pair inputs with outputs by position, so concurrent
// invocations of the same method can interleave their entries. Pairing
// is only guaranteed when each method is invoked serially.
func Instrument[I, O any](log *CallLog, method string, op func(context.Context, I) (O, error)) func(context.Context, I) (O, error) {
	return func(ctx context.Context, in I) (O, error) {
		var zero O

		if err := log.RecordCall(ctx, method, formatInput(in)); err != nil {
			return zero, err
		}

		out, err := op(ctx, in)
		if err != nil {
			return zero, err
		}

		if err := log.RecordResult(ctx, method, formatOutput(out)); err != nil {
			return zero, err
		}
		return out, nil
	}
}

// formatInput renders an operation argument for the history list. Text
// arguments are quoted so the replay output shows their exact bytes.
func formatInput(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case []byte:
		return strconv.Quote(string(t))
	default:
		return fmt.Sprintf("%v", t)
	}
}

// formatOutput renders an operation result for the history list.
func formatOutput(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
