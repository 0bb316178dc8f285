package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/friendsofgo/errors"
	"github.com/spf13/pflag"

	"github.com/nrfta/pagequery"
	"github.com/nrfta/pagequery/client"
	"github.com/nrfta/pagequery/collect"
	"github.com/nrfta/pagequery/filter"
)

type options struct {
	prefix   string
	fragment bool
	defaults bool

	column string
	op     string
	value  string
	op2    string
	value2 string

	cursor   string
	quota    int
	maxPages int
}

type command struct {
	summary string
	usage   string
	minArgs int
	flags   func(*pflag.FlagSet) *options
	run     func(ctx context.Context, env *environment, opts *options, args []string) error
}

var commandOrder = []string{
	"extract", "filters", "add-filter", "clear-filter", "sort", "next", "prev", "fetch", "delete",
}

var commands = map[string]command{
	"extract": {
		summary: "print the list parameters of a URL",
		usage:   "<url> [--prefix p] [--fragment] [--defaults]",
		minArgs: 1,
		flags: func(fs *pflag.FlagSet) *options {
			o := locationFlags(fs)
			fs.BoolVar(&o.defaults, "defaults", false, "fill in default limit and sort")
			return o
		},
		run: runExtract,
	},
	"filters": {
		summary: "print the decoded filters of a URL",
		usage:   "<url> [--prefix p] [--fragment]",
		minArgs: 1,
		flags:   locationFlags,
		run:     runFilters,
	},
	"add-filter": {
		summary: "add a filter to a URL",
		usage:   "<url> --column c --op OP --value v [--op2 OP --value2 v]",
		minArgs: 1,
		flags: func(fs *pflag.FlagSet) *options {
			o := predicateFlags(fs)
			fs.StringVar(&o.op2, "op2", "", "second operator of a range filter")
			fs.StringVar(&o.value2, "value2", "", "second value of a range filter")
			return o
		},
		run: runAddFilter,
	},
	"clear-filter": {
		summary: "remove a filter from a URL",
		usage:   "<url> --column c --op OP --value v",
		minArgs: 1,
		flags:   predicateFlags,
		run:     runClearFilter,
	},
	"sort": {
		summary: "apply a column header click to a URL",
		usage:   "<url> --column c",
		minArgs: 1,
		flags: func(fs *pflag.FlagSet) *options {
			o := locationFlags(fs)
			fs.StringVar(&o.column, "column", "", "column to sort by")
			return o
		},
		run: runSort,
	},
	"next": {
		summary: "point a URL at the next page",
		usage:   "<url> --cursor c",
		minArgs: 1,
		flags:   cursorFlags,
		run: func(ctx context.Context, env *environment, o *options, args []string) error {
			return runNavigate(env, o, args, pagequery.CursorPair{Next: pagequery.Cursor(o.cursor)}, pagequery.NavigateNext)
		},
	},
	"prev": {
		summary: "point a URL at the previous page",
		usage:   "<url> --cursor c",
		minArgs: 1,
		flags:   cursorFlags,
		run: func(ctx context.Context, env *environment, o *options, args []string) error {
			return runNavigate(env, o, args, pagequery.CursorPair{Prev: pagequery.Cursor(o.cursor)}, pagequery.NavigatePrev)
		},
	},
	"fetch": {
		summary: "fetch one page, or collect items across pages",
		usage:   "<resource> [url] [--prefix p] [--quota n]",
		minArgs: 1,
		flags: func(fs *pflag.FlagSet) *options {
			o := locationFlags(fs)
			fs.IntVar(&o.quota, "quota", 0, "collect at least this many items across pages")
			fs.IntVar(&o.maxPages, "max-pages", 10, "stop collecting after this many pages")
			return o
		},
		run: runFetch,
	},
	"delete": {
		summary: "delete items by id",
		usage:   "<resource> <id>...",
		minArgs: 2,
		flags:   func(fs *pflag.FlagSet) *options { return &options{} },
		run:     runDelete,
	},
}

func locationFlags(fs *pflag.FlagSet) *options {
	o := &options{}
	fs.StringVar(&o.prefix, "prefix", "", "parameter prefix of the list")
	fs.BoolVar(&o.fragment, "fragment", false, "read and write the URL fragment instead of the query string")
	return o
}

func predicateFlags(fs *pflag.FlagSet) *options {
	o := locationFlags(fs)
	fs.StringVar(&o.column, "column", "", "column name")
	fs.StringVar(&o.op, "op", string(filter.OpEqual), "operator")
	fs.StringVar(&o.value, "value", "", "value")
	return o
}

func cursorFlags(fs *pflag.FlagSet) *options {
	o := locationFlags(fs)
	fs.StringVar(&o.cursor, "cursor", "", "cursor from the current page")
	return o
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", raw)
	}
	return u, nil
}

// params returns the list parameters of u and a function writing updated
// parameters back into a copy of u.
func params(u *url.URL, o *options) (url.Values, func(url.Values) *url.URL) {
	updateURL := !o.fragment
	values := pagequery.ParseLocation(u).Params(updateURL)

	return values, func(v url.Values) *url.URL {
		return pagequery.WithParams(u, v, updateURL)
	}
}

func printJSON(env *environment, v interface{}) error {
	enc := json.NewEncoder(env.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runExtract(ctx context.Context, env *environment, o *options, args []string) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}

	values, _ := params(u, o)
	extracted := pagequery.Extract(o.prefix, values)
	if o.defaults {
		extracted = pagequery.NewPageConfig().WithDefaults(extracted)
	}

	return printJSON(env, extracted)
}

func runFilters(ctx context.Context, env *environment, o *options, args []string) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}

	values, _ := params(u, o)
	token := values.Get(pagequery.Prefix(o.prefix).Key(pagequery.KeyFilter))

	filters, err := filter.Decode(token)
	if err != nil {
		return err
	}

	return printJSON(env, filters)
}

func (o *options) predicate() (filter.Filter, error) {
	if o.column == "" {
		return filter.Filter{}, errors.New("--column is required")
	}

	op, err := filter.ParseOperator(o.op)
	if err != nil {
		return filter.Filter{}, err
	}

	f := filter.Filter{ColumnName: o.column, Operator: op, Value: o.value}
	if o.op2 != "" {
		op2, err := filter.ParseOperator(o.op2)
		if err != nil {
			return filter.Filter{}, err
		}
		f.Operator2 = op2
		f.Value2 = o.value2
	}

	return f, nil
}

func runAddFilter(ctx context.Context, env *environment, o *options, args []string) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}

	f, err := o.predicate()
	if err != nil {
		return err
	}

	values, rewrite := params(u, o)
	_, err = fmt.Fprintln(env.stdout, rewrite(filter.Add(o.prefix, values, f)))
	return err
}

func runClearFilter(ctx context.Context, env *environment, o *options, args []string) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}

	f, err := o.predicate()
	if err != nil {
		return err
	}

	values, rewrite := params(u, o)
	cleared, ok := filter.Clear(f.ColumnName, f.Operator, f.Value, o.prefix, values)
	if !ok {
		env.logger.Warn().Str("column", f.ColumnName).Str("op", string(f.Operator)).Msg("filter not present, URL unchanged")
	}

	_, err = fmt.Fprintln(env.stdout, rewrite(cleared))
	return err
}

func runSort(ctx context.Context, env *environment, o *options, args []string) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}
	if o.column == "" {
		return errors.New("--column is required")
	}

	values, rewrite := params(u, o)
	_, err = fmt.Fprintln(env.stdout, rewrite(pagequery.ApplySort(o.prefix, values, o.column)))
	return err
}

type navigateFunc func(u *url.URL, prefix string, pair pagequery.CursorPair, updateURL bool) (*url.URL, bool)

func runNavigate(env *environment, o *options, args []string, pair pagequery.CursorPair, navigate navigateFunc) error {
	u, err := parseURL(args[0])
	if err != nil {
		return err
	}

	out, ok := navigate(u, o.prefix, pair, !o.fragment)
	if !ok {
		return errors.New("no page in that direction")
	}

	_, err = fmt.Fprintln(env.stdout, out)
	return err
}

func (env *environment) client() (*client.Client, error) {
	if env.baseURL == "" {
		return nil, errors.Errorf("%s is not set", envBaseURL)
	}

	opts := []client.Option{client.WithLogger(env.logger)}
	if env.token != "" {
		opts = append(opts, client.WithBearerToken(env.token))
	}

	return client.New(env.baseURL, opts...)
}

func runFetch(ctx context.Context, env *environment, o *options, args []string) error {
	c, err := env.client()
	if err != nil {
		return err
	}

	values := url.Values{}
	if len(args) > 1 {
		u, err := parseURL(args[1])
		if err != nil {
			return err
		}
		values, _ = params(u, o)
	}

	config := pagequery.NewPageConfig()
	req := pagequery.RequestFromParams(config.WithDefaults(pagequery.Extract(o.prefix, values)))
	resource := client.NewResource[json.RawMessage](c, args[0])

	if o.quota <= 0 {
		page, err := resource.List(ctx, req.Values())
		if err != nil {
			return err
		}
		return printJSON(env, page)
	}

	result, err := collect.Fill[json.RawMessage](ctx, resource, req.Values(), nil,
		collect.WithQuota(o.quota),
		collect.WithMaxPages(o.maxPages),
		collect.WithPageConfig(config),
		collect.WithLogger(env.logger),
	)
	if err != nil {
		return err
	}

	if result.Metadata.SafeguardHit != "" {
		env.logger.Warn().
			Str("safeguard", result.Metadata.SafeguardHit).
			Int("pages", result.Metadata.PagesFetched).
			Msg("collection stopped early")
	}

	return printJSON(env, map[string]interface{}{
		"data":     result.Items,
		"has_next": result.HasMore(),
		"next":     result.Next,
	})
}

func runDelete(ctx context.Context, env *environment, o *options, args []string) error {
	c, err := env.client()
	if err != nil {
		return err
	}

	result := client.BulkDelete(ctx, c, args[0], args[1:])
	for id, err := range result.Failed {
		env.logger.Error().Err(err).Str("id", id).Msg("delete failed")
	}

	if _, err := fmt.Fprintf(env.stdout, "%s: %d deleted, %d failed\n", result.Outcome, len(result.Succeeded), len(result.Failed)); err != nil {
		return err
	}

	return result.Err()
}
