package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/ejankowski/crawlmark"
	"github.com/ejankowski/crawlmark/crawl"
	"github.com/ejankowski/crawlmark/goquery"
	"github.com/ejankowski/crawlmark/htmltomarkdown"
	crawlmarkhttp "github.com/ejankowski/crawlmark/http"
	"github.com/ejankowski/crawlmark/rod"
	"github.com/ejankowski/crawlmark/sqlite"
	"github.com/ejankowski/crawlmark/trafilatura"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	DB      *sqlite.DB
	Jobs    crawlmark.JobService
	Results crawlmark.ResultService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB string `help:"Database path" env:"CRAWLMARK_DB"`

	Run          RunCmd          `cmd:"" help:"Crawl a site and save matching pages as Markdown"`
	Serve        ServeCmd        `cmd:"" help:"Run the HTTP API server"`
	CheckPattern CheckPatternCmd `cmd:"" name:"check-pattern" help:"Check whether a pattern rule compiles"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	URL         string   `arg:"" help:"Base URL to crawl"`
	Pattern     []string `short:"p" help:"URL pattern rule (repeatable)"`
	Depth       int      `short:"d" default:"2" help:"Maximum crawl depth"`
	Delay       int      `default:"1000" help:"Delay between requests in milliseconds"`
	Concurrency int      `short:"c" default:"2" help:"Concurrent fetch limit during discovery"`
	KeepNav     bool     `help:"Keep navigation elements in extracted content"`
	KeepClutter bool     `help:"Keep scripts, ads and other clutter in extracted content"`
	Images      bool     `help:"Keep images in extracted content"`
	AutoExtract bool     `help:"Use automatic content detection instead of selector rules"`
	NoJS        bool     `name:"no-js" help:"Fetch over plain HTTP without a browser"`
	Out         string   `short:"o" help:"Write Markdown files to this directory"`
	Zip         string   `help:"Write a zip archive to this path"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `default:":8080" help:"Listen address"`
}

// CheckPatternCmd is the "check-pattern" subcommand.
type CheckPatternCmd struct {
	Pattern string `arg:"" help:"Pattern rule to check"`
}

// newEngine assembles the crawl engine from the configured services.
func newEngine(deps *Dependencies, autoExtract, noJS bool) *crawl.Engine {
	var extractor crawlmark.Extractor
	if autoExtract {
		extractor = trafilatura.NewExtractor()
	} else {
		extractor = goquery.NewCleanExtractor()
	}

	newFetcher := func() (crawlmark.Fetcher, error) {
		if noJS {
			return crawlmarkhttp.NewFetcher(), nil
		}
		fetcher, err := rod.NewFetcher()
		if err != nil {
			return nil, err
		}
		return rod.NewLoggingFetcher(fetcher, deps.Logger), nil
	}

	return &crawl.Engine{
		Jobs:       deps.Jobs,
		Results:    deps.Results,
		Links:      goquery.NewLinkExtractor(),
		Extractor:  extractor,
		Converter:  htmltomarkdown.NewConverter(),
		NewFetcher: newFetcher,
		Logger:     deps.Logger,
	}
}
