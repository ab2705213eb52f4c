package notifications

import (
	"fmt"

	"snatcher/internal/utils"

	"github.com/xconstruct/go-pushbullet"
)

// PushbulletClient implements the Notifier interface for Pushbullet.
type PushbulletClient struct {
	pb     *pushbullet.Client
	logger *utils.Logger
}

// NewPushbulletClient creates a new client for sending Pushbullet notifications.
func NewPushbulletClient(apiKey string, logger *utils.Logger) *PushbulletClient {
	return &PushbulletClient{
		pb:     pushbullet.New(apiKey),
		logger: logger,
	}
}

// sendPush sends a note to all of the user's devices.
func (c *PushbulletClient) sendPush(title, body string) {
	// An empty device iden means all devices.
	if err := c.pb.PushNote("", title, body); err != nil {
		c.logger.Error("Error sending Pushbullet notification:", err)
	}
}

func (c *PushbulletClient) NotifySnatch(name, provider, method string) {
	c.sendPush(snatchMessage(name, provider, method))
}

func (c *PushbulletClient) NotifySnatchFailed(name string, err error) {
	c.sendPush(failureMessage(name, err))
}

func (c *PushbulletClient) NotifyNotEnoughSpace(name string) {
	c.sendPush(fmt.Sprintf("Error snatching %s", name), "Not enough space on disk")
}

// Test verifies the API key is valid by fetching user info.
func (c *PushbulletClient) Test() error {
	if _, err := c.pb.Me(); err != nil {
		return fmt.Errorf("pushbullet authentication failed: %w", err)
	}
	return nil
}
