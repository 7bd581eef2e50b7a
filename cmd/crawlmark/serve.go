package main

import (
	"fmt"
	"net/http"

	crawlmarkhttp "github.com/ejankowski/crawlmark/http"
)

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	engine := newEngine(deps, false, false)
	server := crawlmarkhttp.NewServer(deps.Jobs, deps.Results, engine, deps.Logger)

	fmt.Fprintf(deps.Stdout, "Listening on %s\n", c.Addr)
	deps.Logger.Info("server starting", "addr", c.Addr)

	return http.ListenAndServe(c.Addr, server.Handler())
}
