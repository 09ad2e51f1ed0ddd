package sqlagent

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/llm"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/storage/sqlite"
	"github.com/hetulpatel/sqlchat/internal/testutil"
)

const validKey = "sk-validformat-0123456789abcdefghijklmnopqrstuvwxyz"

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.LevelInfo)
	t.Cleanup(func() { logging.SetOutput(nopWriter{}) })
	return &buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func fakeModels(got *llm.Config) Option {
	return WithModelFactory(func(cfg llm.Config) (ChatModel, error) {
		if got != nil {
			*got = cfg
		}
		return &scriptedModel{}, nil
	})
}

func TestBuildRejectsBadCredentials(t *testing.T) {
	for _, key := range []string{"", "   ", "not-a-key", "pk-live-123456"} {
		t.Run(key, func(t *testing.T) {
			logs := captureLogs(t)
			opened := false
			f := NewFactory(config.Config{APIKey: key, DBPath: testutil.SeedQuickCommerce(t)},
				fakeModels(nil),
				WithOpener(func(ctx context.Context, path string) (Database, error) {
					opened = true
					return nil, errors.New("unreachable")
				}))

			agent, err := f.Build(context.Background())
			require.Error(t, err)
			assert.Nil(t, agent)
			var cfgErr *config.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
			assert.False(t, opened)
			assert.Contains(t, logs.String(), "configuration error")
		})
	}
}

func TestBuildLogsEveryTable(t *testing.T) {
	logs := captureLogs(t)
	var got llm.Config
	cfg := config.Config{
		APIKey:        validKey,
		Model:         "gpt-4o",
		DBPath:        testutil.SeedQuickCommerce(t),
		MaxIterations: 4,
		TopK:          5,
	}
	agent, err := NewFactory(cfg, fakeModels(&got)).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, agent)
	defer agent.Close()

	assert.Equal(t, testutil.QuickCommerceTables, agent.Tables())
	assert.Equal(t, 4, agent.cfg.MaxIterations)
	assert.Equal(t, 5, agent.cfg.TopK)
	assert.True(t, agent.cfg.HandleParsingErrors)
	assert.Equal(t, float32(0), got.Temperature)
	assert.Equal(t, validKey, got.APIKey)

	out := logs.String()
	assert.Contains(t, out, "Connected to database with 3 tables")
	assert.Contains(t, out, "Available tables: apps, prices, products")
	assert.NotContains(t, out, validKey)
	assert.Contains(t, out, config.MaskKey(validKey))
}

func TestBuildMissingDatabase(t *testing.T) {
	logs := captureLogs(t)
	cfg := config.Config{APIKey: validKey, DBPath: filepath.Join(t.TempDir(), "missing.db")}

	agent, err := NewFactory(cfg, fakeModels(nil)).Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, agent)

	var opErr *OperationalError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "open database", opErr.Op)
	assert.True(t, errors.Is(err, sqlite.ErrNotFound))
	assert.Contains(t, logs.String(), "Error creating agent")
}

func TestBuildWarnsOnEmptyDatabase(t *testing.T) {
	logs := captureLogs(t)
	cfg := config.Config{APIKey: validKey, DBPath: testutil.EmptyDB(t)}

	agent, err := NewFactory(cfg, fakeModels(nil)).Build(context.Background())
	require.NoError(t, err)
	defer agent.Close()
	assert.Empty(t, agent.Tables())
	assert.Contains(t, logs.String(), "has no tables")
}

type failingTables struct{ Database }

func (failingTables) Tables(ctx context.Context) ([]string, error) {
	return nil, errors.New("disk I/O error")
}

func TestBuildSurvivesTableListingFailure(t *testing.T) {
	logs := captureLogs(t)
	store, err := sqlite.Open(context.Background(), testutil.SeedQuickCommerce(t))
	require.NoError(t, err)

	cfg := config.Config{APIKey: validKey}
	agent, err := NewFactory(cfg, fakeModels(nil), WithOpener(func(ctx context.Context, path string) (Database, error) {
		return failingTables{store}, nil
	})).Build(context.Background())
	require.NoError(t, err)
	defer agent.Close()
	assert.Contains(t, logs.String(), "disk I/O error")
}

type closeCounter struct {
	Database
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.Database.Close()
}

func TestBuildClosesDatabaseWhenModelFails(t *testing.T) {
	captureLogs(t)
	store, err := sqlite.Open(context.Background(), testutil.SeedQuickCommerce(t))
	require.NoError(t, err)
	counter := &closeCounter{Database: store}

	f := NewFactory(config.Config{APIKey: validKey},
		WithOpener(func(ctx context.Context, path string) (Database, error) { return counter, nil }),
		WithModelFactory(func(llm.Config) (ChatModel, error) { return nil, errors.New("bad base url") }),
	)
	agent, err := f.Build(context.Background())
	require.Error(t, err)
	assert.Nil(t, agent)
	assert.Equal(t, 1, counter.closed)
	assert.True(t, strings.Contains(err.Error(), "bad base url"))
}
