// Package camundatest provides a recording worker.JobClient for handler tests.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// Command kinds.
const (
	Complete = "complete"
	Fail     = "fail"
	Throw    = "throw"
)

// Command is one job command as the broker received it. CtxErr is the context's error at send time.
type Command struct {
	Kind         string
	JobKey       int64
	Retries      int32
	ErrorCode    string
	ErrorMessage string
	Variables    map[string]interface{}
	CtxErr       error
}

// JobClient builds real zeebe commands against an in-memory gateway.
type JobClient struct {
	mu       sync.Mutex
	commands []Command
}

func NewJobClient() *JobClient {
	return &JobClient{}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(&gateway{client: c}, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(&gateway{client: c}, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(&gateway{client: c}, noRetry)
}

// Commands returns what was sent so far, in order.
func (c *JobClient) Commands() []Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Command(nil), c.commands...)
}

// Last returns the most recent command, or false when none was sent.
func (c *JobClient) Last() (Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.commands) == 0 {
		return Command{}, false
	}
	return c.commands[len(c.commands)-1], true
}

func (c *JobClient) record(ctx context.Context, cmd Command, variables string) error {
	if variables != "" {
		if err := json.Unmarshal([]byte(variables), &cmd.Variables); err != nil {
			return err
		}
	}
	cmd.CtxErr = ctx.Err()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	return ctx.Err()
}

// gateway implements the three job RPCs; any other call panics on the nil embedded client.
type gateway struct {
	pb.GatewayClient
	client *JobClient
}

func (g *gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	err := g.client.record(ctx, Command{Kind: Complete, JobKey: in.GetJobKey()}, in.GetVariables())
	if err != nil {
		return nil, err
	}
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	err := g.client.record(ctx, Command{
		Kind:         Fail,
		JobKey:       in.GetJobKey(),
		Retries:      in.GetRetries(),
		ErrorMessage: in.GetErrorMessage(),
	}, in.GetVariables())
	if err != nil {
		return nil, err
	}
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	err := g.client.record(ctx, Command{
		Kind:         Throw,
		JobKey:       in.GetJobKey(),
		ErrorCode:    in.GetErrorCode(),
		ErrorMessage: in.GetErrorMessage(),
	}, in.GetVariables())
	if err != nil {
		return nil, err
	}
	return &pb.ThrowErrorResponse{}, nil
}
