// Package hooks runs user shell commands after records are saved.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/mark3labs/labwiz/internal/logger"
)

// ConfigFileName is looked up in the working directory.
const ConfigFileName = ".labwiz.hooks.yml"

// LoadConfig reads the hooks file in workDir. A missing file yields a nil
// config and no error.
func LoadConfig(workDir string) (*Config, error) {
	path := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("No hooks config found at %s", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config %s: %w", path, err)
	}
	for i, h := range cfg.Hooks.PostSubmit {
		if h == nil || strings.TrimSpace(h.Command) == "" {
			return nil, fmt.Errorf("hooks config %s: post_submit[%d] has no command", path, i)
		}
	}

	logger.Debug("Loaded %d post-submit hook(s) from %s", len(cfg.Hooks.PostSubmit), path)
	return &cfg, nil
}

// Runner executes configured hooks in a fixed working directory. A nil
// Runner runs nothing.
type Runner struct {
	cfg     *Config
	workDir string
}

// NewRunner returns nil when cfg has no hooks.
func NewRunner(cfg *Config, workDir string) *Runner {
	if cfg == nil || len(cfg.Hooks.PostSubmit) == 0 {
		return nil
	}
	return &Runner{cfg: cfg, workDir: workDir}
}

// PostSubmit runs the post-submit hooks that apply to ev.Form, in order,
// and joins the output of those with pipe_output set.
//
// A failing or timed out hook does not stop the others; its failure text
// becomes its output. Only a cancelled ctx is returned as an error, along
// with whatever was collected so far.
func (r *Runner) PostSubmit(ctx context.Context, ev Event) (string, error) {
	if r == nil {
		return "", nil
	}
	var piped []string
	for _, h := range r.cfg.Hooks.PostSubmit {
		if !h.Applies(ev.Form) {
			continue
		}
		out, err := r.run(ctx, h, ev)
		if err != nil {
			return strings.Join(piped, "\n"), err
		}
		if h.PipeOutput {
			piped = append(piped, out)
		} else if out != "" {
			logger.Debug("Hook output (not piped): %s", out)
		}
	}
	return strings.Join(piped, "\n"), nil
}

// run executes one hook through sh. The record's values are written to
// stdin as JSON and exported as LABWIZ_FIELD_* variables.
func (r *Runner) run(ctx context.Context, h *Hook, ev Event) (string, error) {
	command := expand(h.Command, ev)
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger.Debug("Running post-submit hook for %s/%s: %s", ev.Form, ev.RecordID, command)

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	payload, err := json.Marshal(ev.Values.Plain())
	if err != nil {
		return "", fmt.Errorf("encoding record for hook: %w", err)
	}

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = r.workDir
	cmd.Env = append(os.Environ(), environ(ev)...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("Hook timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[hook timed out after %ds]\n%s", timeout, stdout.String()), nil
	}

	out := stdout.String()
	if stderr.Len() > 0 {
		out += "\n[stderr]\n" + stderr.String()
	}
	if runErr != nil {
		logger.Warn("Hook failed: %s: %v", command, runErr)
		return fmt.Sprintf("[hook failed: %v]\n%s", runErr, out), nil
	}
	return out, nil
}

// expand replaces {{form}}, {{record}} and {{mode}} in command.
func expand(command string, ev Event) string {
	return strings.NewReplacer(
		"{{form}}", ev.Form,
		"{{record}}", ev.RecordID,
		"{{mode}}", string(ev.Mode),
	).Replace(command)
}

func environ(ev Event) []string {
	env := []string{
		"LABWIZ_FORM=" + ev.Form,
		"LABWIZ_RECORD=" + ev.RecordID,
		"LABWIZ_MODE=" + string(ev.Mode),
	}
	for name, v := range ev.Values {
		env = append(env, "LABWIZ_FIELD_"+envName(name)+"="+v.String())
	}
	return env
}

// envName turns a field name such as patentNumber into PATENT_NUMBER.
func envName(name string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range name {
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			b.WriteByte('_')
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteByte('_')
		}
		prev = r
	}
	return b.String()
}
