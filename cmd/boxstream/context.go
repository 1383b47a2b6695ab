package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"boxstream/config"
	"boxstream/services/catalog"
	"boxstream/services/debrid"
	"boxstream/services/inventory"
	"boxstream/services/metadata"
	"boxstream/services/streams"
)

type commandContext struct {
	configFlag *string

	settingsOnce sync.Once
	settings     config.Settings
	settingsErr  error

	appOnce sync.Once
	app     *app
	appErr  error
}

// app holds the engine components. Every cache is created here once and
// injected; nothing is package-global.
type app struct {
	provider  debrid.Provider
	inventory *inventory.Cache
	metadata  *metadata.Resolver
	catalog   *catalog.Assembler
	streams   *streams.Resolver
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	if path := strings.TrimSpace(os.Getenv("BOXSTREAM_CONFIG")); path != "" {
		return path
	}
	return "settings.json"
}

func (c *commandContext) ensureSettings() (config.Settings, error) {
	c.settingsOnce.Do(func() {
		c.settings, c.settingsErr = config.NewManager(c.configPath()).Load()
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) ensureApp() (*app, error) {
	c.appOnce.Do(func() {
		settings, err := c.ensureSettings()
		if err != nil {
			c.appErr = err
			return
		}
		c.app, c.appErr = buildApp(settings)
	})
	return c.app, c.appErr
}

func buildApp(settings config.Settings) (*app, error) {
	provider, err := debrid.DefaultRegistry.MustGet(settings.Torbox.Provider, settings.Torbox.APIKey)
	if err != nil {
		return nil, fmt.Errorf("content account: %w", err)
	}
	if configurable, ok := provider.(debrid.Configurable); ok {
		configurable.Configure(map[string]string{
			"base_url":        settings.Torbox.BaseURL,
			"timeout_seconds": strconv.Itoa(settings.Torbox.TimeoutSeconds),
		})
	}

	timeout := time.Duration(settings.Metadata.TimeoutSeconds) * time.Second
	resolver := metadata.NewResolver(metadata.NewCinemetaClient(settings.Metadata.CinemetaURL, timeout), timeout)
	inv := inventory.NewCache(provider)

	return &app{
		provider:  provider,
		inventory: inv,
		metadata:  resolver,
		catalog: catalog.NewAssembler(inv, resolver, catalog.Options{
			Limit:     settings.Catalog.Limit,
			PublicURL: settings.Server.PublicURL,
		}),
		streams: streams.NewResolver(inv, resolver, provider, streams.Options{
			LinkConcurrency: settings.Streams.LinkConcurrency,
		}),
	}, nil
}
