package cloud

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudcontrol"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"
)

// Client is the production API implementation backed by the AWS Cloud
// Control API. All calls go through the shared Limiter.
type Client struct {
	cc      *cloudcontrol.Client
	sts     *sts.Client
	limiter *Limiter
	log     zerolog.Logger

	mu        sync.Mutex
	accountID string
}

// NewClient loads the default AWS configuration for the region (and optional
// shared-config profile) and wires the service clients behind the limiter.
func NewClient(ctx context.Context, region, profile string, limiter *Limiter, log zerolog.Logger) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &Client{
		cc:      cloudcontrol.NewFromConfig(cfg),
		sts:     sts.NewFromConfig(cfg),
		limiter: limiter,
		log:     log.With().Str("component", "cloud").Logger(),
	}, nil
}

// ListResources enumerates all resources of one type, following pagination.
// Every page fetch is an individually rate-limited, retried call.
func (c *Client) ListResources(ctx context.Context, typeName string) ([]Description, error) {
	var descs []Description

	paginator := cloudcontrol.NewListResourcesPaginator(c.cc, &cloudcontrol.ListResourcesInput{
		TypeName: aws.String(typeName),
	})
	for paginator.HasMorePages() {
		var page *cloudcontrol.ListResourcesOutput
		err := c.limiter.Do(ctx, "cloudcontrol.ListResources", func(ctx context.Context) error {
			var pageErr error
			page, pageErr = paginator.NextPage(ctx)
			return pageErr
		})
		if err != nil {
			return nil, err
		}
		for _, rd := range page.ResourceDescriptions {
			descs = append(descs, Description{
				Identifier: aws.ToString(rd.Identifier),
				Properties: aws.ToString(rd.Properties),
			})
		}
	}
	return descs, nil
}

// GetResource fetches the full property document of one resource.
func (c *Client) GetResource(ctx context.Context, typeName, identifier string) (Description, error) {
	var out *cloudcontrol.GetResourceOutput
	err := c.limiter.Do(ctx, "cloudcontrol.GetResource", func(ctx context.Context) error {
		var callErr error
		out, callErr = c.cc.GetResource(ctx, &cloudcontrol.GetResourceInput{
			TypeName:   aws.String(typeName),
			Identifier: aws.String(identifier),
		})
		return callErr
	})
	if err != nil {
		return Description{}, err
	}
	if out.ResourceDescription == nil {
		return Description{Identifier: identifier}, nil
	}
	return Description{
		Identifier: aws.ToString(out.ResourceDescription.Identifier),
		Properties: aws.ToString(out.ResourceDescription.Properties),
	}, nil
}

// CallerAccount resolves and caches the account id of the active credentials.
func (c *Client) CallerAccount(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountID != "" {
		return c.accountID, nil
	}

	var out *sts.GetCallerIdentityOutput
	err := c.limiter.Do(ctx, "sts.GetCallerIdentity", func(ctx context.Context) error {
		var callErr error
		out, callErr = c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
		return callErr
	})
	if err != nil {
		return "", err
	}
	c.accountID = aws.ToString(out.Account)
	c.log.Info().Str("account_id", c.accountID).Msg("resolved caller account")
	return c.accountID, nil
}

// Stats exposes the limiter counters for the run summary.
func (c *Client) Stats() LimiterStats {
	return c.limiter.Stats()
}
