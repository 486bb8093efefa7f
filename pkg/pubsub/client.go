package pubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// lookupFunc fetches a topic or subscription by full resource name.
type lookupFunc func(ctx context.Context, resource string) error

// Client owns the Pub/Sub connection shared by the outbox publisher (topic
// side) and the notification worker (subscription side).
type Client struct {
	client    *pubsub.Client
	projectID string
	cfg       config.PubSubConfig

	getTopic        lookupFunc
	getSubscription lookupFunc

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects to Pub/Sub and fails fast when the notification topic or
// subscription has not been provisioned.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}

	psClient, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	c := &Client{
		client:    psClient,
		projectID: projectID,
		cfg:       cfg,
		getTopic: func(ctx context.Context, resource string) error {
			_, err := psClient.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: resource})
			return err
		},
		getSubscription: func(ctx context.Context, resource string) error {
			_, err := psClient.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: resource})
			return err
		},
		publishers: map[string]*pubsub.Publisher{},
	}

	if err := c.Ping(ctx); err != nil {
		_ = psClient.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"topic":        cfg.NotificationTopic,
			"subscription": cfg.NotificationSubscription,
		}), "pubsub client initialized")
	}
	return c, nil
}

// Ping confirms the notification topic and subscription still exist.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.getTopic == nil || c.getSubscription == nil {
		return errNotInitialized
	}
	if err := c.checkExists(ctx, kindTopic, c.cfg.NotificationTopic, c.getTopic); err != nil {
		return err
	}
	return c.checkExists(ctx, kindSubscription, c.cfg.NotificationSubscription, c.getSubscription)
}

func (c *Client) checkExists(ctx context.Context, kind, name string, lookup lookupFunc) error {
	resource := c.resourceName(kind, name)
	if resource == "" {
		return fmt.Errorf("pubsub %s name is required", strings.TrimSuffix(kind, "s"))
	}
	if err := lookup(ctx, resource); err != nil {
		// v2 surfaces gRPC status errors.
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%s does not exist", resource)
		}
		return fmt.Errorf("checking %s: %w", resource, err)
	}
	return nil
}

// Subscription returns a subscriber for a subscription id or full resource name.
func (c *Client) Subscription(name string) *pubsub.Subscriber {
	if c == nil || c.client == nil {
		return nil
	}
	resource := c.resourceName(kindSubscription, name)
	if resource == "" {
		return nil
	}
	return c.client.Subscriber(resource)
}

func (c *Client) NotificationSubscription() *pubsub.Subscriber {
	return c.Subscription(c.cfg.NotificationSubscription)
}

// Publisher returns the cached publisher for a topic id or full resource name.
// Publishers batch in the background, so one per topic is reused and flushed
// on Close.
func (c *Client) Publisher(name string) *pubsub.Publisher {
	if c == nil || c.client == nil {
		return nil
	}
	resource := c.resourceName(kindTopic, name)
	if resource == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if pub, ok := c.publishers[resource]; ok {
		return pub
	}
	pub := c.client.Publisher(resource)
	c.publishers[resource] = pub
	return pub
}

func (c *Client) NotificationPublisher() *pubsub.Publisher {
	return c.Publisher(c.cfg.NotificationTopic)
}

// Close flushes cached publishers and releases the connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for resource, pub := range c.publishers {
		pub.Stop()
		delete(c.publishers, resource)
	}
	c.mu.Unlock()
	return c.client.Close()
}

// resourceName expands a short id into projects/<p>/<kind>/<id>. Names that
// are already fully qualified pass through.
func (c *Client) resourceName(kind, name string) string {
	if c == nil {
		return ""
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return ""
	}
	if strings.HasPrefix(n, "projects/") && strings.Contains(n, "/"+kind+"/") {
		return n
	}
	if c.projectID == "" {
		return ""
	}
	return fmt.Sprintf("projects/%s/%s/%s", c.projectID, kind, n)
}
