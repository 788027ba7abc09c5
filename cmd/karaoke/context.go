package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"karaoke/internal/api"
	"karaoke/internal/config"
)

type rootOptions struct {
	configPath string
	server     string
	token      string
	json       bool
}

type commandContext struct {
	opts *rootOptions

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(opts *rootOptions) *commandContext {
	return &commandContext{opts: opts}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.opts.configPath))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool { return c.opts.json }

// serverAddress prefers --server over the configured bind address.
func (c *commandContext) serverAddress() (string, error) {
	if server := strings.TrimSpace(c.opts.server); server != "" {
		return server, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.APIBind == "" {
		return "", errors.New("no daemon address: set paths.api_bind or pass --server")
	}
	return cfg.Paths.APIBind, nil
}

func (c *commandContext) apiToken() string {
	if token := strings.TrimSpace(c.opts.token); token != "" {
		return token
	}
	if cfg, err := c.ensureConfig(); err == nil {
		return cfg.Paths.APIToken
	}
	return ""
}

func (c *commandContext) withClient(cmd *cobra.Command, fn func(context.Context, *api.Client) error) error {
	addr, err := c.serverAddress()
	if err != nil {
		return err
	}
	client, err := api.NewClient(addr, c.apiToken(), nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return wrapDialError(fn(ctx, client), client.BaseURL())
}

func wrapDialError(err error, server string) error {
	if err == nil {
		return nil
	}
	var opErr *net.OpError
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: %s refused the connection; start it with `karaoked`", server)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return fmt.Errorf("connect to daemon at %s: %w", server, err)
	default:
		return err
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func jsonEncoder(out io.Writer) *json.Encoder {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc
}
