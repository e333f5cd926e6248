package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/dscache"
	"github.com/unkn0wn-root/dscache/config"
	zaplog "github.com/unkn0wn-root/dscache/log/zap"
	rp "github.com/unkn0wn-root/dscache/provider/redis"
)

// object is what the CLI stores: any JSON object.
type object = map[string]any

type globalFlags struct {
	configPath string
	namespace  string
	redisURL   string
	verbose    bool
	timeout    time.Duration
}

func newRootCmd(out io.Writer) *cobra.Command {
	g := new(globalFlags)
	root := &cobra.Command{
		Use:          "dscache",
		Short:        "Inspect and edit dscache namespaces stored in Redis",
		SilenceUsage: true,
	}
	root.SetOut(out)
	fs := root.PersistentFlags()
	fs.StringVarP(&g.configPath, "config", "c", "", "config file (yaml, json or toml)")
	fs.StringVarP(&g.namespace, "namespace", "n", "", "namespace name from the config file")
	fs.StringVar(&g.redisURL, "redis-url", "", "override redis.url")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log every cache state transition")
	fs.DurationVar(&g.timeout, "timeout", 10*time.Second, "overall command timeout")
	_ = root.MarkPersistentFlagRequired("namespace")

	root.AddCommand(
		newGetCmd(g),
		newSetCmd(g),
		newDelCmd(g),
		newKeysCmd(g),
		newClearCmd(g),
	)
	return root
}

// open builds the namespace cache described by the flags and config file.
func open(g *globalFlags) (dscache.Cache[object], *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	ns, err := cfg.Namespace(g.namespace)
	if err != nil {
		return nil, nil, err
	}

	lvl := zapcore.InfoLevel
	if g.verbose || ns.Verbose {
		lvl = zapcore.DebugLevel
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	lg, err := zc.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	url := cfg.Redis.URL
	if g.redisURL != "" {
		url = g.redisURL
	}
	p, err := rp.NewFromURL(url, cfg.Redis.ScanCount)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}

	opts := dscache.Options[object]{
		Provider: p,
		Logger:   zaplog.New(lg),
		Verbose:  g.verbose,
	}
	if err := config.Apply(ns, &opts); err != nil {
		return nil, nil, err
	}
	c, err := dscache.New(opts)
	if err != nil {
		_ = p.Close(context.Background())
		return nil, nil, err
	}
	return c, lg, nil
}

// withCache runs fn against an opened cache and closes it afterwards.
func withCache(cmd *cobra.Command, g *globalFlags, fn func(ctx context.Context, c dscache.Cache[object]) error) error {
	c, lg, err := open(g)
	if err != nil {
		return err
	}
	defer lg.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), g.timeout)
	defer cancel()
	defer func() {
		if err := c.Close(ctx); err != nil {
			lg.Warn("close", zap.Error(err))
		}
	}()
	return fn(ctx, c)
}

func newGetCmd(g *globalFlags) *cobra.Command {
	var peek bool
	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Read a record (populating and revalidating unless --peek)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, g, func(ctx context.Context, c dscache.Cache[object]) error {
				read := c.Get
				if peek {
					read = c.Peek
				}
				rec, ok, err := read(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: not found", c.StorageKey(args[0]))
				}
				return printRecord(cmd.OutOrStdout(), rec)
			})
		},
	}
	cmd.Flags().BoolVar(&peek, "peek", false, "read without population or staleness checks")
	return cmd
}

func newSetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY JSON",
		Short: "Write a JSON object under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v object
			if err := json.Unmarshal([]byte(args[1]), &v); err != nil || v == nil {
				return fmt.Errorf("value must be a JSON object: %v", err)
			}
			return withCache(cmd, g, func(ctx context.Context, c dscache.Cache[object]) error {
				if err := c.Set(ctx, args[0], v); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.StorageKey(args[0]))
				return nil
			})
		},
	}
}

func newDelCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "del KEY",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(cmd, g, func(ctx context.Context, c dscache.Cache[object]) error {
				existed, err := c.Delete(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s deleted=%t\n", c.StorageKey(args[0]), existed)
				return nil
			})
		},
	}
}

func newKeysCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every storage key in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, g, func(ctx context.Context, c dscache.Cache[object]) error {
				keys, err := c.Keys(ctx)
				if err != nil {
					return err
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func newClearCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every record in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCache(cmd, g, func(ctx context.Context, c dscache.Cache[object]) error {
				return c.Clear(ctx)
			})
		},
	}
}

func printRecord(w io.Writer, rec dscache.Record[object]) error {
	out := struct {
		Value     object    `json:"value"`
		UpdatedAt time.Time `json:"updatedAt"`
	}{rec.Value, rec.UpdatedAt.UTC()}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
