package main

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/config"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

type rootOptions struct {
	configPath string
	envPrefix  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "restquery",
		Short:         "Encode and run typed queries against REST APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.envPrefix, "env-prefix", config.DefaultEnvPrefix, "prefix of environment overrides")

	cmd.AddCommand(newEncodeCmd(), newGetCmd(opts))
	return cmd
}

// queryFlags are shared by every command that builds a query.
type queryFlags struct {
	filter   string
	includes []string
	order    []string
	page     int
	perPage  int
	limit    int
	marker   string
	params   map[string]string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.filter, "filter", "", `criteria document, e.g. '{"age":{"$gte":18}}'`)
	flags.StringSliceVar(&f.includes, "include", nil, "relation paths to include, e.g. groups.permissions")
	flags.StringSliceVar(&f.order, "order", nil, "sort fields, '-' prefix for descending")
	flags.IntVar(&f.page, "page", 0, "page number")
	flags.IntVar(&f.perPage, "per-page", 0, "page size")
	flags.IntVar(&f.limit, "limit", 0, "limit for marker pagination")
	flags.StringVar(&f.marker, "marker", "", "marker for marker pagination")
	flags.StringToStringVar(&f.params, "param", nil, "route parameters, e.g. project_id=7")
}

func (f *queryFlags) query() (*specification.Query, error) {
	q := specification.NewQuery()
	if f.filter != "" {
		var document map[string]any
		if err := json.UnmarshalFromString(f.filter, &document); err != nil {
			return nil, err
		}
		criteria, err := specification.ParseCriteria(document)
		if err != nil {
			return nil, err
		}
		q.Where(criteria)
	}
	q.With(f.includes...)
	for _, token := range f.order {
		order := specification.ParseOrderBy(token)
		q.OrderBy(order.Field, order.Direction)
	}
	if f.page > 0 {
		q.SetPage(f.page)
	}
	if f.perPage > 0 {
		q.SetPerPage(f.perPage)
	}
	if f.limit > 0 {
		q.SetLimit(f.limit)
	}
	if f.marker != "" {
		q.SetOffset(f.marker)
	}
	for name, value := range f.params {
		q.SetRouteParameter(name, value)
	}
	return q, nil
}
