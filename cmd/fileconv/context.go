package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"fileconv/internal/api"
	"fileconv/internal/config"
	"fileconv/internal/download"
	"fileconv/internal/formats"
	"fileconv/internal/history"
	"fileconv/internal/logging"
	"fileconv/internal/metrics"
	"fileconv/internal/present"
	"fileconv/internal/session"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	serverFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, serverFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		serverFlag:   serverFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if server := flagValue(c.serverFlag); server != "" {
			cfg.Server.BaseURL = strings.TrimRight(server, "/")
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// sessionEnv bundles everything a flow command needs: the service client, the
// history store and its recorder, metrics and a machine rendering to the
// command's output.
type sessionEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *api.Client
	catalog *formats.Catalog
	store   *history.Store
	metrics *metrics.Metrics
	console *present.Console
	machine *session.Machine
}

func (c *commandContext) openSession(cmd *cobra.Command) (*sessionEnv, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	client, err := api.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	out := cmd.OutOrStdout()
	console := newConsole(out, client)
	catalog := formats.FromConfig(cfg)
	m := metrics.New(logger)

	machine, err := session.New(session.Options{
		Service:   client,
		Catalog:   catalog,
		Renderer:  console,
		Recorders: []session.Recorder{history.NewRecorder(store, logger), m},
		Timing:    session.TimingFromConfig(cfg),
		Logger:    logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &sessionEnv{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		catalog: catalog,
		store:   store,
		metrics: m,
		console: console,
		machine: machine,
	}, nil
}

func newConsole(out io.Writer, client *api.Client) *present.Console {
	return present.NewConsole(present.ConsoleOptions{
		Out:         out,
		Color:       present.ShouldColorize(out),
		Interactive: present.IsTerminal(out),
		Resolve: func(ref string) string {
			resolved, err := client.Resolve(ref)
			if err != nil {
				return ref
			}
			return resolved.String()
		},
	})
}

// Close flushes metrics and closes the history store.
func (e *sessionEnv) Close() error {
	var errs []error
	if err := e.metrics.WriteTextfile(e.cfg.Metrics.Textfile); err != nil {
		errs = append(errs, err)
	}
	if err := e.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close history: %w", err))
	}
	return errors.Join(errs...)
}

func (e *sessionEnv) downloader(overwrite bool) (*download.Downloader, error) {
	return download.New(e.client, download.Options{
		Dir:       e.cfg.Paths.DownloadDir,
		Overwrite: overwrite,
		Logger:    e.logger,
	})
}

// withConversionLock runs fn while holding the cross-process conversion lock.
func (e *sessionEnv) withConversionLock(fn func() error) error {
	lock, err := history.NewConversionLock(e.cfg)
	if err != nil {
		return err
	}
	if err := lock.Acquire(); err != nil {
		return err
	}
	e.logger.Debug("conversion lock acquired", logging.String("path", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			e.logger.Warn("release conversion lock", logging.String("path", lock.Path()), logging.Error(err))
		}
	}()
	return fn()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}
