package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/finmate/internal/chat"
	"github.com/Veraticus/finmate/internal/cli"
	"github.com/Veraticus/finmate/internal/common"
	"github.com/Veraticus/finmate/internal/config"
	"github.com/Veraticus/finmate/internal/finmate"
	"github.com/Veraticus/finmate/internal/intent"
	"github.com/Veraticus/finmate/internal/knowledge"
	"github.com/Veraticus/finmate/internal/responder"
	"github.com/Veraticus/finmate/internal/storage"
)

// app bundles what the chat commands need.
type app struct {
	cfg     *config.Config
	store   *storage.SQLiteStorage
	client  *finmate.Client
	session *chat.Session
}

// initStorage opens and migrates the local database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return cfg, nil
}

// newApp wires the client, the local store, and a chat session. When record
// is false the transcript is not saved.
func newApp(ctx context.Context, record bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := finmate.NewClient(clientConfig(cfg))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	kb, err := knowledge.Default()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	classifier, err := intent.NewClassifier(kb)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var recorder chat.Recorder
	if record {
		recorder = store
	}

	session, err := chat.NewSession(chat.Config{
		Classifier:   classifier,
		Responder:    responder.New(kb),
		Dispatcher:   finmate.NewDispatcher(client, cfg.Server.Timeout),
		Backend:      client,
		Recorder:     recorder,
		ExpenseLimit: cfg.Chat.ExpenseLimit,
		UseAITips:    cfg.Chat.UseAITips,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{cfg: cfg, store: store, client: client, session: session}, nil
}

// clientConfig leaves the HTTP timeout at the client default. server.timeout
// budgets conversational dispatch only.
func clientConfig(cfg *config.Config) finmate.Config {
	return finmate.Config{
		BaseURL: cfg.Server.BaseURL,
		Cookie:  cfg.Server.Cookie,
	}
}

func (a *app) Close() {
	_ = a.store.Close()
}

// darkMode resolves the theme: the ui.theme override, else the saved preference.
func (a *app) darkMode(ctx context.Context) bool {
	switch a.cfg.UI.Theme {
	case config.ThemeDark:
		return true
	case config.ThemeLight:
		return false
	}

	dark, err := a.store.DarkMode(ctx)
	if err != nil {
		common.LogError(err, "failed to read theme preference", nil)
		return false
	}
	return dark
}

// printer renders one-shot command output to w.
func (a *app) printer(ctx context.Context, w io.Writer) (*cli.REPL, error) {
	f, isFile := w.(*os.File)
	return cli.NewREPL(a.session, cli.Options{
		In:     os.Stdin,
		Out:    w,
		Dark:   a.darkMode(ctx),
		Typing: isFile && isTerminal(f),
	})
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
