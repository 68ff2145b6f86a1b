package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/ogenlabs/hipus/search"
	"github.com/ogenlabs/hipus/storage"
)

// runApp executes one CLI invocation on a fresh app instance.
func runApp(args ...string) error {
	return newApp().Run(append([]string{"hipus"}, args...))
}

func findCommand(t *testing.T, name string) *cli.Command {
	t.Helper()

	for _, cmd := range newApp().Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func stringFlag(t *testing.T, cmd *cli.Command, name string) *cli.StringFlag {
	t.Helper()

	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("string flag %q not found on %q", name, cmd.Name)
	return nil
}

func intFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()

	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not found on %q", name, cmd.Name)
	return nil
}

func TestAppCommands(t *testing.T) {
	t.Run("all commands registered", func(t *testing.T) {
		for _, name := range []string{"index", "remove", "search", "suggest", "rebuild", "stats"} {
			assert.NotNil(t, findCommand(t, name))
		}
	})

	t.Run("db is required on every command", func(t *testing.T) {
		for _, cmd := range newApp().Commands {
			flag := stringFlag(t, cmd, "db")
			assert.True(t, flag.Required, "command %q", cmd.Name)
		}
	})

	t.Run("search mode defaults to hybrid", func(t *testing.T) {
		cmd := findCommand(t, "search")
		assert.Equal(t, "hybrid", stringFlag(t, cmd, "mode").Value)
		assert.Equal(t, search.DefaultLimit, intFlag(t, cmd, "limit").Value)
	})

	t.Run("rebuild has batching defaults", func(t *testing.T) {
		cmd := findCommand(t, "rebuild")
		assert.Equal(t, 512, intFlag(t, cmd, "batch-size").Value)
		assert.Equal(t, 1000, intFlag(t, cmd, "report-interval").Value)
		assert.Equal(t, 3, intFlag(t, cmd, "max-retries").Value)
	})

	t.Run("missing db flag fails", func(t *testing.T) {
		err := runApp("stats")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})
}

func TestCommandsAgainstStore(t *testing.T) {
	db := t.TempDir()

	require.NoError(t, runApp("index", "--db", db, "--id", "rpt-001",
		"--meta", "source=inspection",
		"בדיקה הנדסית של מערכת החשמל"))

	require.NoError(t, runApp("search", "--db", db, "--mode", "exact", "בדיקה"))
	require.NoError(t, runApp("suggest", "--db", db, "חש"))
	require.NoError(t, runApp("rebuild", "--db", db))
	require.NoError(t, runApp("stats", "--db", db))
	require.NoError(t, runApp("remove", "--db", db, "rpt-001"))

	t.Run("removing twice reports not found", func(t *testing.T) {
		err := runApp("remove", "--db", db, "rpt-001")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("unsupported mode is rejected", func(t *testing.T) {
		err := runApp("search", "--db", db, "--mode", "regex", "חשמל")
		require.ErrorIs(t, err, search.ErrUnsupportedMode)
	})
}

func TestCommandValidation(t *testing.T) {
	t.Run("index requires text", func(t *testing.T) {
		err := runApp("index", "--db", "/tmp/unused", "--id", "rpt-001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document text is required")
	})

	t.Run("remove requires an id argument", func(t *testing.T) {
		err := runApp("remove", "--db", "/tmp/unused")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "document id argument is required")
	})

	t.Run("search requires a query", func(t *testing.T) {
		err := runApp("search", "--db", "/tmp/unused")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search query is required")
	})

	t.Run("rebuild rejects zero batch size", func(t *testing.T) {
		err := runApp("rebuild", "--db", "/tmp/unused", "--batch-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size must be greater than 0")
	})
}

func TestParseMetadata(t *testing.T) {
	t.Run("key value pairs", func(t *testing.T) {
		metadata, err := parseMetadata([]string{"source=inspection", "floor=2"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"source": "inspection", "floor": "2"}, metadata)
	})

	t.Run("empty input yields nil", func(t *testing.T) {
		metadata, err := parseMetadata(nil)
		require.NoError(t, err)
		assert.Nil(t, metadata)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		metadata, err := parseMetadata([]string{"note=a=b"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"note": "a=b"}, metadata)
	})

	t.Run("missing separator fails", func(t *testing.T) {
		_, err := parseMetadata([]string{"source"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected key=value")
	})

	t.Run("empty key fails", func(t *testing.T) {
		_, err := parseMetadata([]string{"=inspection"})
		require.Error(t, err)
	})
}

func TestSetupLogger(t *testing.T) {
	newTestApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newTestApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				require.NoError(t, newTestApp().Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newTestApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})

	t.Run("alias -l works on the real app", func(t *testing.T) {
		err := runApp("-l", "verbose", "stats", "--db", "/tmp/unused")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
