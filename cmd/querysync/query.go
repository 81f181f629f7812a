package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	qerrors "github.com/vango-dev/querysync/internal/errors"
	"github.com/vango-dev/querysync/pkg/location"
	"github.com/vango-dev/querysync/pkg/querycodec"
)

// parsePairs turns key=value arguments into an ordered query. A key given
// more than once collects its values into a list.
func parsePairs(args []string) (*querycodec.Query, error) {
	q := querycodec.New()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, qerrors.New("Q040").Wrap(fmt.Errorf("%q", arg))
		}
		switch existing, _ := q.Get(key); v := existing.(type) {
		case string:
			q.Set(key, []string{v, value})
		case []string:
			q.Set(key, append(v, value))
		default:
			q.Set(key, value)
		}
	}
	return q, nil
}

func parseCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <search>",
		Short: "Decode a search string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := querycodec.Parse(args[0])
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(q.Map())
			}
			for _, k := range q.Keys() {
				v, _ := q.Get(k)
				parts, _ := querycodec.Format(v)
				for _, p := range parts {
					fmt.Fprintf(out, "%s=%s\n", k, p)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the query as a JSON object")

	return cmd
}

func encodeCmd() *cobra.Command {
	var bare bool

	cmd := &cobra.Command{
		Use:   "encode key=value...",
		Short: "Build a search string from key=value pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parsePairs(args)
			if err != nil {
				return err
			}
			if bare {
				fmt.Fprintln(cmd.OutOrStdout(), querycodec.Encode(q))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), querycodec.Search(q))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&bare, "bare", false, "Omit the leading '?'")

	return cmd
}

func mergeCmd() *cobra.Command {
	var drop []string

	cmd := &cobra.Command{
		Use:   "merge <search> [key=value...]",
		Short: "Merge key=value pairs into a search string",
		Long: `Merge key=value pairs into a search string the way a location's
UpdateQuery does: existing keys keep their position, new keys are appended,
and keys passed with --drop are removed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := location.New()
			if err := loc.SetSearch(normalizeSearch(args[0])); err != nil {
				return err
			}

			q, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			for _, key := range drop {
				q.Set(key, nil)
			}
			if err := loc.UpdateQueryOrdered(q); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), loc.Search())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&drop, "drop", nil, "Keys to remove")

	return cmd
}

// normalizeSearch adds the leading '?' to a non-empty query typed without it.
func normalizeSearch(s string) string {
	if s == "" || strings.HasPrefix(s, "?") {
		return s
	}
	return "?" + s
}
