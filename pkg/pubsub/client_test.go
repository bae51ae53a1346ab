package pubsub

import (
	"context"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/config"
)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(context.Background(), config.GCPConfig{}, config.PubSubConfig{InvalidationSubscription: "refresh"}, nil)
	require.ErrorIs(t, err, errProjectIDRequired)

	_, err = NewClient(context.Background(), config.GCPConfig{ProjectID: "retail-prod"}, config.PubSubConfig{InvalidationSubscription: "  "}, nil)
	require.ErrorIs(t, err, errSubscriptionRequired)
}

func TestSubscriptionResourceName(t *testing.T) {
	c := &Client{projectID: "retail-prod"}
	assert.Equal(t, "projects/retail-prod/subscriptions/dataset-refresh", c.subscriptionResourceName("dataset-refresh"))
	assert.Equal(t, "projects/other/subscriptions/x", c.subscriptionResourceName("projects/other/subscriptions/x"))
	assert.Empty(t, c.subscriptionResourceName(" "))
	assert.Empty(t, (&Client{}).subscriptionResourceName("dataset-refresh"))

	var nilClient *Client
	assert.Empty(t, nilClient.subscriptionResourceName("dataset-refresh"))
	assert.Nil(t, nilClient.InvalidationSubscription())
	assert.Error(t, nilClient.Ping(context.Background()))
	assert.NoError(t, nilClient.Close())
}

func TestApplyReceiveSettings(t *testing.T) {
	rs := pubsub.ReceiveSettings{MaxOutstandingMessages: 1000, NumGoroutines: 4}
	applyReceiveSettings(&rs, config.PubSubConfig{})
	assert.Equal(t, 1000, rs.MaxOutstandingMessages)
	assert.Equal(t, 4, rs.NumGoroutines)

	applyReceiveSettings(&rs, config.PubSubConfig{MaxOutstandingMessages: 10, NumGoroutines: 1})
	assert.Equal(t, 10, rs.MaxOutstandingMessages)
	assert.Equal(t, 1, rs.NumGoroutines)
}

func TestCredentialOptions(t *testing.T) {
	assert.Len(t, credentialOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`, ApplicationCredentials: "/tmp/creds"}), 1)
	assert.Len(t, credentialOptions(config.GCPConfig{ApplicationCredentials: "/tmp/creds"}), 1)
	assert.Empty(t, credentialOptions(config.GCPConfig{}))
}
