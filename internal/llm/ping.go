package llm

import (
	"context"
	"fmt"
	"time"
)

// PingTimeout bounds a connection test.
const PingTimeout = 10 * time.Second

const pingPrompt = "Please reply exactly: connection test ok"

// Ping sends a minimal prompt to verify the key and endpoint work.
// It returns the provider's reply.
func Ping(ctx context.Context, client Client, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = PingTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := client.Analyze(ctx, pingPrompt, "")
	if err != nil {
		return "", fmt.Errorf("connection test failed: %w", err)
	}
	return reply, nil
}
