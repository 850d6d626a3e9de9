package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/auth"
	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/credential"
	"github.com/nhle/carepartner/internal/logger"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/report"
	"github.com/nhle/carepartner/internal/store"
)

// env is everything a command needs, opened from the config file.
type env struct {
	cfg     *model.AppConfig
	cfgPath string
	log     zerolog.Logger
	store   *store.SQLiteStore
	session *auth.Session
	client  *api.Client
	tree    *category.Tree

	closers []io.Closer
}

// openEnv loads the config and opens the store, session and API client.
// The interactive dashboard logs to the rotating file; other commands
// log warnings to stderr.
func openEnv(c *cli.Context, interactive bool) (*env, error) {
	path := c.String("config")
	if path == "" {
		path = model.DefaultConfigPath()
	}
	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, cfgPath: path}
	if interactive {
		log, closer, err := logger.New(cfg.Log, c.Bool("verbose"))
		if err != nil {
			return nil, err
		}
		e.log = log
		e.closers = append(e.closers, closer)
	} else {
		e.log = logger.Console(os.Stderr, c.Bool("verbose"))
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		e.close()
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		e.close()
		return nil, err
	}
	e.store = s
	e.closers = append(e.closers, s)

	tree, err := category.Load(cfg.CategoriesFile)
	if err != nil {
		e.close()
		return nil, err
	}
	e.tree = tree

	var tokens auth.TokenStore
	if ks, err := credential.Open(); err != nil {
		e.log.Warn().Err(err).Msg("keyring unavailable, session will not be saved")
	} else {
		tokens = ks
	}
	e.session = auth.NewSession(tokens)
	if err := e.session.Restore(); err != nil && !errors.Is(err, auth.ErrNoSession) {
		e.log.Warn().Err(err).Msg("restoring session")
	}

	e.client = api.NewClient(cfg.API.BaseURL, e.session,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSec)*time.Second),
		api.WithLogger(e.log),
	)
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.log.Warn().Err(err).Msg("closing")
		}
	}
}

// requireSession fails fast when no login is saved.
func (e *env) requireSession() error {
	if !e.session.Active() {
		return errors.New("not logged in: run `carepartner login` first")
	}
	return nil
}

func (e *env) printer() *report.Printer {
	return report.New(os.Stdout, !color.NoColor)
}
