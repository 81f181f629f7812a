package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	qerrors "github.com/vango-dev/querysync/internal/errors"
	"github.com/vango-dev/querysync/pkg/location"
	"github.com/vango-dev/querysync/pkg/param"
	"github.com/vango-dev/querysync/pkg/querycodec"
)

// fieldFromArg builds a field from name[:kind]=default.
func fieldFromArg(arg string) (param.Field, error) {
	decl, def, ok := strings.Cut(arg, "=")
	if !ok || decl == "" {
		return param.Field{}, qerrors.New("Q040").Wrap(fmt.Errorf("%q", arg))
	}
	name, kind, _ := strings.Cut(decl, ":")

	switch kind {
	case "", "string":
		return param.String(name, def), nil
	case "int":
		n, err := strconv.Atoi(def)
		if err != nil {
			return param.Field{}, qerrors.New("Q041").Wrap(fmt.Errorf("field %s: %w", name, err))
		}
		return param.Int(name, n), nil
	case "float":
		f, err := strconv.ParseFloat(def, 64)
		if err != nil {
			return param.Field{}, qerrors.New("Q041").Wrap(fmt.Errorf("field %s: %w", name, err))
		}
		return param.Float(name, f), nil
	case "bool":
		b, err := strconv.ParseBool(def)
		if err != nil {
			return param.Field{}, qerrors.New("Q041").Wrap(fmt.Errorf("field %s: %w", name, err))
		}
		return param.Bool(name, b), nil
	case "strings":
		var vals []string
		if def != "" {
			vals = strings.Split(def, ",")
		}
		return param.Strings(name, vals...), nil
	default:
		return param.Field{}, qerrors.New("Q041").Wrap(fmt.Errorf("unknown kind %q for field %s", kind, name))
	}
}

func syncCmd() *cobra.Command {
	var renames []string

	cmd := &cobra.Command{
		Use:   "sync <search> name[:kind]=default...",
		Short: "Sync fields with a search string and print the result",
		Long: `Declare an object with the given fields, sync it with a location whose
search string is <search>, and print the resulting search string and field
values. Values already in the URL win over field defaults.

Kinds: string (default), int, float, bool, strings (comma separated).
Use --key field=key to map a field to a differently named query key.`,
		Example: `  querysync sync "?color=red" color=blue page:int=1
  querysync sync "?c=red" color=blue --key color=c`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make([]param.Field, 0, len(args)-1)
			for _, arg := range args[1:] {
				f, err := fieldFromArg(arg)
				if err != nil {
					return err
				}
				fields = append(fields, f)
			}
			obj := param.New("cli", fields...)

			keys := make(map[string]string, len(fields))
			for _, f := range fields {
				keys[f.Name] = f.Name
			}
			for _, r := range renames {
				field, key, ok := strings.Cut(r, "=")
				if !ok {
					return qerrors.New("Q040").Wrap(fmt.Errorf("%q", r))
				}
				keys[field] = key
			}
			fm := make(location.FieldMap, 0, len(fields))
			for _, f := range fields {
				fm = append(fm, location.FieldKey{Field: f.Name, Key: keys[f.Name]})
			}

			loc := location.New()
			if err := loc.ApplyBrowser(context.Background(), location.Model{Search: normalizeSearch(args[0])}); err != nil {
				return err
			}
			if err := loc.Sync(obj, fm); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "search: %s\n", loc.Search())
			for _, name := range obj.Fields() {
				v, _ := obj.Value(name)
				parts, _ := querycodec.Format(v)
				fmt.Fprintf(out, "%s: %s\n", name, strings.Join(parts, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&renames, "key", nil, "Map a field to a query key (field=key)")

	return cmd
}
