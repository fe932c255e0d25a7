package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// PluginChecker shells out to an external program that emits a JSON array of
// check records on stdout. The final page URL is passed as the last argument.
type PluginChecker struct {
	Name    string
	Command string
	Args    []string
	Env     map[string]string
	Timeout time.Duration
}

// ParsePluginSpec splits a "Name=/path/to/binary" flag value.
func ParsePluginSpec(spec string) (*PluginChecker, error) {
	name, command, ok := strings.Cut(spec, "=")
	name = strings.TrimSpace(name)
	command = strings.TrimSpace(command)
	if !ok || name == "" || command == "" {
		return nil, fmt.Errorf("plugin spec %q must be Name=/path/to/binary", spec)
	}
	return &PluginChecker{Name: name, Command: command}, nil
}

func (c *PluginChecker) Category() string { return c.Name }

func (c *PluginChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	if c.Command == "" {
		return scoring.UnavailableCategory(c.Name, "plugin command is empty")
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := page.FinalURL
	if target == "" {
		target = page.URL
	}
	args := append([]string{}, c.Args...)
	args = append(args, target)

	cmd := exec.CommandContext(runCtx, c.Command, args...)
	cmd.Env = os.Environ()
	for k, v := range c.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return scoring.UnavailableCategory(c.Name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return scoring.UnavailableCategory(c.Name, err.Error())
	}

	var records []scoring.CheckRecord
	if err := json.Unmarshal(output, &records); err != nil {
		return scoring.UnavailableCategory(c.Name, fmt.Sprintf("invalid plugin output: %v", err))
	}
	for i := range records {
		if records[i].Severity == "" {
			records[i].Severity = scoring.SeverityMedium
		}
	}
	return scoring.NewCategoryResult(c.Name, records)
}
