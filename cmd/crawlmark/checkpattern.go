package main

import (
	"errors"
	"fmt"

	"github.com/ejankowski/crawlmark"
)

// Run executes the check-pattern command.
func (c *CheckPatternCmd) Run(deps *Dependencies) error {
	valid, message := crawlmark.ValidatePattern(c.Pattern)
	if !valid {
		fmt.Fprintf(deps.Stderr, "invalid: %s\n", message)
		return errors.New("pattern does not compile")
	}
	fmt.Fprintln(deps.Stdout, "ok")
	return nil
}
