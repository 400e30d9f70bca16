package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/arithmetic-dispatcher/middleware/ratelimit"
	"github.com/example/arithmetic-dispatcher/modules/calculator"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/nats-io/nats.go"
)

// computeRemote sends req to the calculator's compute service.
func computeRemote(ctx context.Context, opts computeOptions, req *calculator.CalculateRequest) (*calculator.CalculateResponse, error) {
	nc, err := nats.Connect(opts.remote,
		nats.Name("arithctl"),
		nats.Timeout(opts.timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Close()

	msg, err := newComputeMsg(req, opts.clientID)
	if err != nil {
		return nil, err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	reply, err := nc.RequestMsgWithContext(ctx, msg)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return nil, fmt.Errorf("no calculator service at %s", opts.remote)
		}
		return nil, fmt.Errorf("compute request failed: %w", err)
	}

	return decodeComputeReply(reply)
}

func newComputeMsg(req *calculator.CalculateRequest, clientID string) (*nats.Msg, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	msg := nats.NewMsg(calculator.ComputeSubject)
	msg.Data = data
	if clientID != "" {
		msg.Header.Set("X-Client-ID", clientID)
	}
	return msg, nil
}

// errRateLimited marks a compute request the service refused under its rate limit.
var errRateLimited = errors.New("rate limited")

// decodeComputeReply parses a compute reply. Service errors arrive as
// Mono-Error headers with an empty body.
func decodeComputeReply(reply *nats.Msg) (*calculator.CalculateResponse, error) {
	if reply.Header.Get(types.HeaderError) == "true" {
		message := reply.Header.Get(types.HeaderErrorMessage)
		if reply.Header.Get(types.HeaderErrorType) == ratelimit.ErrorType {
			return nil, fmt.Errorf("calculator rejected request: %s: %w", message, errRateLimited)
		}
		return nil, fmt.Errorf("calculator rejected request: %s", message)
	}

	data := reply.Data
	var resp calculator.CalculateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode reply %q: %w", truncate(data, 120), err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("unexpected reply %q", truncate(data, 120))
	}
	return &resp, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
