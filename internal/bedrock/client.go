package bedrock

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

type Client struct {
	client  *bedrockruntime.Client
	modelID string

	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func NewClient(ctx context.Context, region string, modelID string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &Client{
		client:       bedrockruntime.NewFromConfig(cfg),
		modelID:      modelID,
		MaxRetries:   3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
	}, nil
}

// ModelID returns the model this client invokes.
func (c *Client) ModelID() string {
	return c.modelID
}

// Runtime exposes the underlying Bedrock runtime client for callers that
// invoke other model families (embeddings).
func (c *Client) Runtime() *bedrockruntime.Client {
	return c.client
}
