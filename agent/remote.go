package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/agentwire/agentwire/comm"
	"github.com/agentwire/agentwire/core"
	"github.com/agentwire/agentwire/logging"
)

// Wire operation names carried in the "op" field of a request payload.
const (
	opUnderstand = "understand"
	opRecommend  = "recommend"
	opExecute    = "execute"
	opCheck      = "check"
)

// RemoteOptions configures a Remote proxy.
type RemoteOptions struct {
	// Timeout bounds each forwarded operation. Defaults to the
	// communicator's default request timeout.
	Timeout time.Duration
}

// Remote satisfies every role contract by forwarding each operation to a
// named agent through the communicator. Which contracts are actually
// answered depends on what the remote side serves; unserved operations
// come back as errors.
type Remote struct {
	comm    *comm.Communicator
	target  string
	timeout time.Duration
}

var (
	_ core.IntentAgent      = (*Remote)(nil)
	_ core.RecommenderAgent = (*Remote)(nil)
	_ core.ExecutorAgent    = (*Remote)(nil)
	_ core.CheckerAgent     = (*Remote)(nil)
)

// NewRemote constructs a proxy that addresses target through c.
func NewRemote(c *comm.Communicator, target string, optFns ...func(o *RemoteOptions)) *Remote {
	opts := RemoteOptions{Timeout: comm.DefaultRequestTimeout}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Remote{comm: c, target: target, timeout: opts.Timeout}
}

// Understand implements core.IntentAgent over the wire.
func (r *Remote) Understand(ctx context.Context, request map[string]any) (map[string]any, error) {
	result, err := r.call(ctx, map[string]any{"op": opUnderstand, "request": request})
	if err != nil {
		return nil, err
	}
	out, _ := result.(map[string]any)
	return out, nil
}

// Recommend implements core.RecommenderAgent over the wire.
func (r *Remote) Recommend(ctx context.Context, intent map[string]any) (map[string]any, error) {
	result, err := r.call(ctx, map[string]any{"op": opRecommend, "intent": intent})
	if err != nil {
		return nil, err
	}
	out, _ := result.(map[string]any)
	return out, nil
}

// Execute implements core.ExecutorAgent over the wire.
func (r *Remote) Execute(ctx context.Context, in core.ExecutionInput) (map[string]any, error) {
	result, err := r.call(ctx, map[string]any{"op": opExecute, "input": in})
	if err != nil {
		return nil, err
	}
	out, _ := result.(map[string]any)
	return out, nil
}

// Check implements core.CheckerAgent over the wire.
func (r *Remote) Check(ctx context.Context, intent, outcome map[string]any) (core.CheckOutcome, error) {
	result, err := r.call(ctx, map[string]any{"op": opCheck, "intent": intent, "execution": outcome})
	if err != nil {
		return core.CheckOutcome{}, err
	}
	verdict, ok := result.(core.CheckOutcome)
	if !ok {
		return core.UndeterminedOutcome(), nil
	}
	return verdict, nil
}

func (r *Remote) call(ctx context.Context, payload map[string]any) (any, error) {
	resp, err := r.comm.SendRequest(ctx, r.target, payload, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("remote call to %s: %w", r.target, err)
	}
	if errText, ok := resp["error"].(string); ok && errText != "" {
		return nil, fmt.Errorf("remote %s: %s", r.target, errText)
	}
	return resp["result"], nil
}

// ServeOptions declares which local implementations answer forwarded
// operations. Nil roles report "not served" to the caller.
type ServeOptions struct {
	Intent      core.IntentAgent
	Recommender core.RecommenderAgent
	Executor    core.ExecutorAgent
	Checker     core.CheckerAgent
	Logger      logging.Logger
}

// Serve installs a request handler on c that answers role operation
// requests against the configured local implementations. Each request is
// answered synchronously from the broker's dispatch path.
func Serve(c *comm.Communicator, optFns ...func(o *ServeOptions)) {
	opts := ServeOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	c.RegisterHandler(core.KindRequest, func(msg core.Message) error {
		result, err := serveOne(context.Background(), opts, msg.Payload)
		if err != nil {
			opts.Logger.Warn("remote operation failed", "from", msg.From, "error", err)
			c.SendResponse(msg, map[string]any{"error": err.Error()})
			return nil
		}
		c.SendResponse(msg, map[string]any{"result": result})
		return nil
	})
}

func serveOne(ctx context.Context, opts ServeOptions, payload map[string]any) (any, error) {
	op, _ := payload["op"].(string)
	switch op {
	case opUnderstand:
		if opts.Intent == nil {
			return nil, fmt.Errorf("intent role not served")
		}
		request, _ := payload["request"].(map[string]any)
		return opts.Intent.Understand(ctx, request)
	case opRecommend:
		if opts.Recommender == nil {
			return nil, fmt.Errorf("recommender role not served")
		}
		intent, _ := payload["intent"].(map[string]any)
		return opts.Recommender.Recommend(ctx, intent)
	case opExecute:
		if opts.Executor == nil {
			return nil, fmt.Errorf("executor role not served")
		}
		in, _ := payload["input"].(core.ExecutionInput)
		return opts.Executor.Execute(ctx, in)
	case opCheck:
		if opts.Checker == nil {
			return nil, fmt.Errorf("checker role not served")
		}
		intent, _ := payload["intent"].(map[string]any)
		execution, _ := payload["execution"].(map[string]any)
		return opts.Checker.Check(ctx, intent, execution)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}
