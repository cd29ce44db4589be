// Package app wires application services with infrastructure adapters.
package app

import (
	"context"
	"fmt"

	"github.com/omnichat/omnichat/internal/application/chat"
	"github.com/omnichat/omnichat/internal/application/persona"
	"github.com/omnichat/omnichat/internal/domain"
	"github.com/omnichat/omnichat/internal/infrastructure/config"
	"github.com/omnichat/omnichat/internal/infrastructure/historydb"
	"github.com/omnichat/omnichat/internal/infrastructure/registry"
	"github.com/omnichat/omnichat/internal/infrastructure/secret"
	"github.com/omnichat/omnichat/internal/infrastructure/transcript"
	"github.com/omnichat/omnichat/internal/pkg/logger"
	"github.com/omnichat/omnichat/internal/ports"
)

// Container holds the long-lived dependency graph. The provider registry is
// an explicit value here, never a package global.
type Container struct {
	Config      domain.Config
	ConfigPath  string
	Logger      ports.Logger
	Registry    *registry.Registry
	Secrets     *secret.Resolver
	Transcripts ports.TranscriptStore
	History     ports.HistoryRepository
	Personas    *persona.Service
}

// BuildContainer constructs the dependency graph and loads configuration.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	log := logger.New(verbose)

	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	secrets := secret.NewResolver(nil)
	reg := registry.New(secrets)

	personas := &persona.Service{
		Factory:  reg,
		Logger:   log,
		Settings: cfg.Generation(),
	}

	return &Container{
		Config:      cfg,
		ConfigPath:  cfgLoader.Path(),
		Logger:      log,
		Registry:    reg,
		Secrets:     secrets,
		Transcripts: transcript.NewFileStore(""),
		History:     historydb.NewSQLiteStore(""),
		Personas:    personas,
	}, nil
}

// NewSession constructs the initial adapter from configuration and wraps it
// in a ready conversation session. The blocking secret prompt, when one is
// needed, happens inside this call.
func (c *Container) NewSession() (*chat.Session, error) {
	settings := c.Config.Generation()

	active, err := c.Registry.Create(c.Config.AIProvider.Provider, c.Config.AIProvider.Model, settings)
	if err != nil {
		return nil, err
	}

	policy := &chat.Policy{
		Factory:  c.Registry,
		Logger:   c.Logger,
		Settings: settings,
	}
	return chat.NewSession(active, policy, c.Registry, c.Config.Interface.MaxHistory, c.Logger), nil
}
