package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/storage"
)

// Rule is one herald rule. All set conditions must match; unset conditions
// are ignored.
type Rule struct {
	Name           string `yaml:"name"`
	Repository     string `yaml:"repository"`
	MessagePattern string `yaml:"message_pattern"`
	PathPrefix     string `yaml:"path_prefix"`
	Action         string `yaml:"action"`

	messageRe *regexp.Regexp
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and compiles the herald rule file. An empty path yields
// an empty rule set.
func LoadRules(path string) ([]Rule, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read herald rules from %s: %w", path, err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse herald rules: %w", err)
	}

	for i := range file.Rules {
		rule := &file.Rules[i]
		if rule.Name == "" {
			return nil, fmt.Errorf("herald rule %d has no name", i)
		}
		if rule.Action == "" {
			rule.Action = "audit"
		}
		if rule.MessagePattern != "" {
			re, err := regexp.Compile(rule.MessagePattern)
			if err != nil {
				return nil, fmt.Errorf("herald rule %q has a bad message pattern: %w", rule.Name, err)
			}
			rule.messageRe = re
		}
	}
	return file.Rules, nil
}

// HeraldExecutor evaluates the configured rules against one commit and
// records an audit row per matching rule.
type HeraldExecutor struct {
	Store  storage.Store
	Rules  []Rule
	Logger *slog.Logger
}

func (e *HeraldExecutor) Name() string { return ExecHerald }

func (e *HeraldExecutor) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	if len(e.Rules) == 0 {
		return nil
	}

	// Loaded lazily: only rules with a path condition need the change
	// parser's output.
	var paths []core.PathChange
	pathsLoaded := false

	for i := range e.Rules {
		rule := &e.Rules[i]
		if rule.Repository != "" && rule.Repository != repo.Callsign {
			continue
		}
		if rule.messageRe != nil && !rule.messageRe.MatchString(commit.Summary) {
			continue
		}
		if rule.PathPrefix != "" {
			if !pathsLoaded {
				var err error
				paths, err = e.Store.GetCommitPaths(ctx, commit.ID)
				if err != nil {
					return err
				}
				pathsLoaded = true
			}
			if !anyPathHasPrefix(paths, rule.PathPrefix) {
				continue
			}
		}

		e.Logger.Info("herald rule matched", "rule", rule.Name, "commit", commit.Ref(repo))
		if err := e.Store.RecordHeraldAudit(ctx, commit.ID, rule.Name, rule.Action); err != nil {
			return err
		}
	}
	return nil
}

func anyPathHasPrefix(paths []core.PathChange, prefix string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p.Path, prefix) {
			return true
		}
	}
	return false
}
