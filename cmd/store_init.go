package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/config"
	"github.com/sells-group/jobscout/internal/store"
	"github.com/sells-group/jobscout/pkg/sheets"
)

// sheetsOptions are appended to the options built from config when the
// Sheets client is created.
var sheetsOptions []sheets.Option

// initStore opens the backend selected by store.driver and runs its
// migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	zap.L().Debug("store ready", zap.String("driver", cfg.Store.Driver))
	return st, nil
}

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sheets":
		client, err := initSheetsClient(ctx, cfg.Sheets)
		if err != nil {
			return nil, err
		}
		return store.NewSheets(client), nil
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	case "xlsx":
		return store.NewXLSX(cfg.Store.Path)
	case "memory":
		return store.NewMemory(), nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSheetsClient writes the credential file from the environment when
// present and authorizes a Sheets client with it.
func initSheetsClient(ctx context.Context, sc config.SheetsConfig) (sheets.Client, error) {
	if _, err := config.BootstrapCredentials(sc); err != nil {
		return nil, err
	}

	opts := []sheets.Option{sheets.WithCredentialsFile(sc.CredentialsFile)}
	if sc.BaseURL != "" {
		opts = append(opts, sheets.WithBaseURL(sc.BaseURL))
	}
	opts = append(opts, sheetsOptions...)
	client, err := sheets.NewClient(ctx, sc.SpreadsheetID, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init sheets client")
	}
	return client, nil
}
