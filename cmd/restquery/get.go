package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/config"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/decoder"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/locator"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/metrics"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/model"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session/rest"
	specification "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

type getOptions struct {
	query      queryFlags
	id         string
	primaryKey string
	stats      bool
}

func newGetCmd(root *rootOptions) *cobra.Command {
	opts := &getOptions{}
	cmd := &cobra.Command{
		Use:   "get <resource>",
		Short: "Fetch records of a resource through the configured routes",
		Long: `Fetch records of a resource through the configured routes.

The resource uses the routes "<resource>.index" and "<resource>.show".
Records are printed as JSON. Includes are requested upstream and printed as
they are embedded in the response.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, root, opts, args[0])
		},
	}
	opts.query.register(cmd)
	cmd.Flags().StringVar(&opts.id, "id", "", "primary key of a single record")
	cmd.Flags().StringVar(&opts.primaryKey, "primary-key", model.DefaultPrimaryKey, "primary key attribute")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print request counts to stderr")
	return cmd
}

func runGet(cmd *cobra.Command, root *rootOptions, opts *getOptions, resource string) error {
	cfg, err := config.Load(root.configPath, root.envPrefix)
	if err != nil {
		return err
	}
	logger := config.NewLogger(cfg.Log, cmd.ErrOrStderr())

	transport, err := cfg.Transport()
	if err != nil {
		return err
	}
	sessionOpts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	connOpts, err := cfg.ConnectionOptions()
	if err != nil {
		return err
	}
	conn := locator.NewConnection(append(connOpts, locator.WithLogger(logger))...)

	t := model.NewType(resource, nil)
	t.PrimaryKey = opts.primaryKey
	resources, err := locator.New[*model.Entity](conn, t)
	if err != nil {
		return err
	}

	q, err := opts.query.query()
	if err != nil {
		return err
	}
	if cfg.PerPage > 0 && q.Page().IsSome() && q.PerPage().IsNothing() {
		q.SetPerPage(cfg.PerPage)
	}
	if cfg.Limit > 0 && q.Offset().IsSome() && q.Limit().IsNothing() {
		q.SetLimit(cfg.Limit)
	}

	pool := rest.NewSessionPool(transport, sessionOpts...)
	collector := metrics.NewCollector("restquery")
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		return err
	}
	collector.AttachPool(pool)

	var result any
	err = pool.Session(cmd.Context(), func(s session.Session) error {
		var fetchErr error
		result, fetchErr = fetch(s, conn, resources, q, opts.id)
		return fetchErr
	})
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(content)); err != nil {
		return err
	}
	if opts.stats {
		return printStats(cmd, registry)
	}
	return nil
}

func fetch(
	s session.Session,
	conn *locator.Connection,
	l *locator.Locator[*model.Entity],
	q *specification.Query,
	id string,
) (any, error) {
	t := l.Type()
	// Generic resources declare no relations, so included data is printed raw.
	if len(q.Includes()) > 0 {
		route := t.Routes.Index
		var identity any
		if id != "" {
			route, identity = t.Routes.Show, id
			q.SetRouteParameter(t.PrimaryKey, id)
		}
		payload, err := conn.FetchRaw(s, route, q, identity)
		if err != nil {
			return nil, err
		}
		records, err := conn.Decoder().AsRecordList(payload)
		if err != nil {
			return nil, err
		}
		if id != "" {
			return firstRecord(records), nil
		}
		return records, nil
	}

	if id != "" {
		e, err := l.FindOrFail(s, id)
		if err != nil {
			return nil, err
		}
		return e.Attributes(), nil
	}
	if page, ok := q.Page().Get(); ok {
		perPage := q.PerPage().UnwrapOr(specification.DefaultPerPage)
		p, err := l.Paginate(s, q, page, perPage)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"items":        attributes(p.Items),
			"total":        p.Total,
			"current_page": p.CurrentPage,
			"per_page":     p.PerPage,
		}, nil
	}
	c, err := l.Fetch(s, q)
	if err != nil {
		return nil, err
	}
	return attributes(c), nil
}

func attributes(c *model.Collection) []decoder.Record {
	records := make([]decoder.Record, 0, c.Len())
	for _, e := range model.Items[*model.Entity](c) {
		records = append(records, e.Attributes())
	}
	return records
}

func firstRecord(records []decoder.Record) any {
	if len(records) == 0 {
		return nil
	}
	return records[0]
}

func printStats(cmd *cobra.Command, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				labels := make(map[string]string, len(metric.GetLabel()))
				for _, label := range metric.GetLabel() {
					labels[label.GetName()] = label.GetValue()
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s %s %.0f\n",
					family.GetName(), labels["method"], labels["route"], labels["status"], counter.GetValue())
			}
		}
	}
	return nil
}
