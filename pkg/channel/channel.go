// Package channel defines the Channel interface for InspiraAI chat transports.
package channel

import "context"

// Channel is a chat transport (Slack, Telegram) that answers topics with
// quotes until its context is canceled.
type Channel interface {
	Name() string
	Run(ctx context.Context) error
}
