package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pdiddy/scholar-digest/internal/credential"
	"github.com/pdiddy/scholar-digest/internal/docx"
	"github.com/pdiddy/scholar-digest/internal/export"
	"github.com/pdiddy/scholar-digest/internal/observability"
	"github.com/pdiddy/scholar-digest/internal/search"
	"github.com/pdiddy/scholar-digest/internal/session"
	"github.com/pdiddy/scholar-digest/internal/summarize"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

const metricsNamespace = "scholar_digest"

// newMetrics registers collectors on a fresh registry with the Go and
// process collectors alongside.
func newMetrics() (*observability.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return observability.NewMetrics(metricsNamespace, reg), reg
}

func newSearchClient(c types.Config, m *observability.Metrics) *search.Client {
	client := search.NewClient(c.Search, nil)
	client.Logger = observability.Component(logger, "search")
	client.Metrics = m
	return client
}

func newController(c types.Config, m *observability.Metrics) *session.Controller {
	return session.NewController(newSearchClient(c, m), session.Options{
		PruneHidden: c.Selection.PruneHidden,
		Logger:      observability.Component(logger, "session"),
		Metrics:     m,
	})
}

func storePath(c types.Config) string {
	if c.Credential.StorePath != "" {
		return c.Credential.StorePath
	}
	return credential.DefaultStorePath()
}

// openCredentials returns the provider chain in lookup order: secrets
// directory, then the persisted store. The returned store must be closed.
func openCredentials(c types.Config) (credential.Chain, *credential.Store, error) {
	store, err := credential.OpenStore(storePath(c))
	if err != nil {
		return nil, nil, err
	}
	chain := credential.Chain{
		credential.Dir{Path: c.Credential.SecretsDir, Logger: logger},
		store,
	}
	return chain, store, nil
}

// exportCredentials opens the credential chain only when summaries are
// requested. The returned close function is always safe to call.
func exportCredentials(c types.Config, summarize bool) (credential.Provider, func() error, error) {
	if !summarize {
		return credential.Chain{}, func() error { return nil }, nil
	}
	chain, store, err := openCredentials(c)
	if err != nil {
		return nil, nil, err
	}
	return chain, store.Close, nil
}

// newPipeline builds the export pipeline with both document builders and
// a summarizer backed by creds.
func newPipeline(c types.Config, creds credential.Provider, m *observability.Metrics) *export.Pipeline {
	p := export.NewPipeline()
	p.Register(types.FormatDocx, docx.New())
	p.Summaries = &summarize.Source{Config: c.Summary, Credentials: creds}
	p.Logger = observability.Component(logger, "export")
	p.Metrics = m
	return p
}
