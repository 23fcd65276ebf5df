package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/haukened/weave-edge/internal/edge/common/log"
	"github.com/haukened/weave-edge/internal/edge/config"
	"github.com/haukened/weave-edge/internal/edge/domain"
	"github.com/haukened/weave-edge/internal/edge/repos/statsstore"
	"github.com/haukened/weave-edge/internal/edge/services/render"
	"github.com/haukened/weave-edge/internal/edge/services/stats"
)

type rootOptions struct {
	dbPath string
	key    string
	locale string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "weave-statsctl",
		Short: "Inspect and update the weave-edge stats record",
		Long: `weave-statsctl reads and writes the JSON stats record that weave-edged
substitutes into served HTML. The server reads the record on every
request, so changes show up on the next page load.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.dbPath, "db", envOr("EDGE_STATS_DB", config.DEFAULT_APP_CONFIG.StatsDB), "Path to the stats database")
	root.PersistentFlags().StringVarP(&opts.key, "key", "k", envOr("EDGE_STATS_KEY", config.DEFAULT_APP_CONFIG.StatsKey), "Key the record is stored under")
	root.PersistentFlags().StringVar(&opts.locale, "locale", envOr("EDGE_LOCALE", config.DEFAULT_APP_CONFIG.Locale), "Locale used by render")

	root.AddCommand(
		newGetCmd(opts),
		newPutCmd(opts),
		newSetCmd(opts),
		newUnsetCmd(opts),
		newKeysCmd(opts),
		newRenderCmd(opts),
	)
	return root
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the stored record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := statsstore.Open(opts.dbPath, statsstore.Options{ReadOnly: true})
			if err != nil {
				return fmt.Errorf("open %s: %w", opts.dbPath, err)
			}
			defer st.Close()

			data, err := st.Get(cmd.Context(), opts.key)
			if err != nil {
				return fmt.Errorf("get %q: %w", opts.key, err)
			}
			var out bytes.Buffer
			if err := json.Indent(&out, data, "", "  "); err != nil {
				// stored by something other than this tool
				out.Reset()
				out.Write(data)
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}
}

func newPutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "put <json|@file|->",
		Short: "Replace the record with a JSON object",
		Example: `  weave-statsctl put '{"themes":15,"motions":55}'
  weave-statsctl put @stats.json
  generate-stats | weave-statsctl put -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if _, err := domain.DecodeStats(data); err != nil {
				return fmt.Errorf("invalid record: %w", err)
			}
			var compact bytes.Buffer
			if err := json.Compact(&compact, data); err != nil {
				return fmt.Errorf("invalid record: %w", err)
			}
			return withWritableStore(opts, func(st *statsstore.Store) error {
				return st.Put(cmd.Context(), opts.key, compact.Bytes())
			})
		},
	}
}

func newSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "set <field> <integer>",
		Short:   "Set one counter, keeping the rest of the record",
		Example: "  weave-statsctl set themes 16",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("value %q is not an integer", args[1])
			}
			return updateFields(cmd.Context(), opts, func(fields map[string]any) {
				fields[args[0]] = json.Number(strconv.FormatInt(n, 10))
			})
		},
	}
}

func newUnsetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <field>",
		Short: "Remove one counter so it renders as a placeholder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateFields(cmd.Context(), opts, func(fields map[string]any) {
				delete(fields, args[0])
			})
		},
	}
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List stored keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := statsstore.Open(opts.dbPath, statsstore.Options{ReadOnly: true})
			if err != nil {
				return fmt.Errorf("open %s: %w", opts.dbPath, err)
			}
			defer st.Close()

			keys, err := st.Keys(cmd.Context())
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var showTokens bool
	cmd := &cobra.Command{
		Use:   "render <file.html>",
		Short: "Render a local HTML file with the stored record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := language.Parse(opts.locale)
			if err != nil {
				return fmt.Errorf("invalid locale %q: %w", opts.locale, err)
			}
			html, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			provider := stats.NewProvider(stats.ProviderOptions{
				Store:  statsstore.NewFileReader(opts.dbPath, 0),
				Key:    opts.key,
				Logger: log.GetLogger(),
			})
			rec := provider.Fetch(cmd.Context())
			r := render.NewRenderer(domain.NewFormatter(tag))

			out := cmd.OutOrStdout()
			if showTokens {
				tokens := r.Tokens(rec)
				names := make([]string, 0, len(tokens))
				for k := range tokens {
					names = append(names, k)
				}
				sort.Strings(names)
				for _, k := range names {
					fmt.Fprintf(out, "%s\t%s\n", k, tokens[k])
				}
				return nil
			}
			_, err = io.WriteString(out, r.Render(string(html), rec))
			return err
		},
	}
	cmd.Flags().BoolVar(&showTokens, "tokens", false, "Print the marker table instead of the page")
	return cmd
}

// readDocument resolves a put argument: inline JSON, @path, or - for stdin.
func readDocument(arg string, stdin io.Reader) ([]byte, error) {
	switch {
	case arg == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(arg, "@"):
		return os.ReadFile(strings.TrimPrefix(arg, "@"))
	default:
		return []byte(arg), nil
	}
}

func withWritableStore(opts *rootOptions, fn func(st *statsstore.Store) error) error {
	st, err := statsstore.Open(opts.dbPath, statsstore.Options{})
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.dbPath, err)
	}
	if err := fn(st); err != nil {
		_ = st.Close()
		return err
	}
	return st.Close()
}

// updateFields applies mutate to the stored record, starting from an empty
// one when nothing is stored yet.
func updateFields(ctx context.Context, opts *rootOptions, mutate func(map[string]any)) error {
	return withWritableStore(opts, func(st *statsstore.Store) error {
		rec := domain.EmptyStats()
		data, err := st.Get(ctx, opts.key)
		switch {
		case err == nil:
			if rec, err = domain.DecodeStats(data); err != nil {
				return fmt.Errorf("stored record: %w", err)
			}
		case !errors.Is(err, statsstore.ErrNotFound):
			return err
		}

		fields := rec.Fields()
		mutate(fields)
		out, err := json.Marshal(domain.NewStatsRecord(fields))
		if err != nil {
			return err
		}
		return st.Put(ctx, opts.key, out)
	})
}
