package client

import (
	"context"
	"fmt"
	"net/http"
	"net/rpc"
	"strings"
	"time"

	"github.com/kolo/xmlrpc"

	"github.com/Belphemur/EpisodeSubs/internal/metrics"
)

// RemoteCaller invokes a remote procedure and decodes its reply into reply.
type RemoteCaller interface {
	Call(ctx context.Context, method string, reply any, args ...any) error
}

// StatusReply is implemented by replies carrying a protocol status line such as
// "200 OK". The call fails unless the status starts with "200".
type StatusReply interface {
	RemoteStatus() string
}

// XMLRPCCaller is a RemoteCaller speaking XML-RPC over the shared HTTP transport.
type XMLRPCCaller struct {
	rpc     *xmlrpc.Client
	timeout time.Duration
}

// NewXMLRPCCaller creates a caller for endpoint reusing the transport and the
// timeout of httpClient.
func NewXMLRPCCaller(endpoint string, httpClient *http.Client) (*XMLRPCCaller, error) {
	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	rpcClient, err := xmlrpc.NewClient(endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("failed to create XML-RPC client for %s: %w", endpoint, err)
	}
	return &XMLRPCCaller{rpc: rpcClient, timeout: httpClient.Timeout}, nil
}

// Call issues method with args as positional parameters.
func (c *XMLRPCCaller) Call(ctx context.Context, method string, reply any, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	call := c.rpc.Go(method, args, reply, make(chan *rpc.Call, 1))

	var err error
	select {
	case <-ctx.Done():
		metrics.RemoteCallsTotal.WithLabelValues(method, "error").Inc()
		return ctx.Err()
	case done := <-call.Done:
		err = done.Error
	}
	if err != nil {
		metrics.RemoteCallsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s: %w", method, err)
	}

	if sr, ok := reply.(StatusReply); ok && !strings.HasPrefix(sr.RemoteStatus(), "200") {
		metrics.RemoteCallsTotal.WithLabelValues(method, "bad_status").Inc()
		return &ErrRemoteStatus{Method: method, Status: sr.RemoteStatus()}
	}

	metrics.RemoteCallsTotal.WithLabelValues(method, "success").Inc()
	return nil
}

// Close shuts the underlying RPC client down.
func (c *XMLRPCCaller) Close() error {
	return c.rpc.Close()
}
