package workers

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/sevigo/repo-warden/internal/core"
	"github.com/sevigo/repo-warden/internal/gitutil"
	"github.com/sevigo/repo-warden/internal/repomanager"
	"github.com/sevigo/repo-warden/internal/storage"
)

// GitMessageParser extracts author and message metadata from a git commit.
type GitMessageParser struct {
	Store   storage.Store
	Mirrors repomanager.Manager
	Git     *gitutil.Client
	Logger  *slog.Logger
}

func (p *GitMessageParser) Name() string { return ExecGitMessage }

func (p *GitMessageParser) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	path, err := p.Mirrors.EnsureMirror(ctx, repo)
	if err != nil {
		return err
	}

	info, err := p.Git.CommitInfo(path, commit.Identifier)
	if err != nil {
		return err
	}

	commit.AuthorName = info.AuthorName
	commit.AuthorEmail = info.AuthorEmail
	commit.Epoch = info.Epoch
	commit.Summary = core.SummaryLine(info.Message)
	return p.Store.UpdateCommitMessage(ctx, commit)
}

// HgMessageParser extracts commit metadata from a Mercurial changeset via
// the hg CLI.
type HgMessageParser struct {
	Store   storage.Store
	Mirrors repomanager.Manager
	Logger  *slog.Logger
}

func (p *HgMessageParser) Name() string { return ExecHgMessage }

func (p *HgMessageParser) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	path, err := p.Mirrors.EnsureMirror(ctx, repo)
	if err != nil {
		return err
	}

	// hgdate is "<unixtime> <tzoffset>".
	cmd := exec.CommandContext(ctx, "hg", "log", "-R", path, "-r", commit.Identifier,
		"--template", `{author|person}\n{author|email}\n{date|hgdate}\n{desc}`)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("hg log failed for %s: %w", commit.Identifier, err)
	}

	name, email, epoch, message, err := parseHgLog(string(out))
	if err != nil {
		return fmt.Errorf("unexpected hg log output for %s: %w", commit.Identifier, err)
	}

	commit.AuthorName = name
	commit.AuthorEmail = email
	commit.Epoch = epoch
	commit.Summary = core.SummaryLine(message)
	return p.Store.UpdateCommitMessage(ctx, commit)
}

func parseHgLog(out string) (name, email string, epoch int64, message string, err error) {
	parts := strings.SplitN(out, "\n", 4)
	if len(parts) < 4 {
		return "", "", 0, "", fmt.Errorf("expected 4 template fields, got %d", len(parts))
	}
	dateFields := strings.Fields(parts[2])
	if len(dateFields) < 1 {
		return "", "", 0, "", fmt.Errorf("empty hgdate field")
	}
	epoch, err = strconv.ParseInt(dateFields[0], 10, 64)
	if err != nil {
		return "", "", 0, "", fmt.Errorf("bad hgdate %q: %w", parts[2], err)
	}
	return parts[0], parts[1], epoch, parts[3], nil
}

// SvnMessageParser extracts commit metadata from a Subversion revision.
// Subversion needs no local mirror; svn log talks to the remote directly.
type SvnMessageParser struct {
	Store  storage.Store
	Logger *slog.Logger
}

func (p *SvnMessageParser) Name() string { return ExecSvnMessage }

type svnLog struct {
	Entries []svnLogEntry `xml:"logentry"`
}

type svnLogEntry struct {
	Revision string `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Msg      string `xml:"msg"`
}

func (p *SvnMessageParser) Run(ctx context.Context, repo *core.Repository, commit *core.Commit) error {
	cmd := exec.CommandContext(ctx, "svn", "log", "--xml", "-r", commit.Identifier, repo.CloneURL)
	out, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("svn log failed for r%s: %w", commit.Identifier, err)
	}

	var log svnLog
	if err := xml.Unmarshal(out, &log); err != nil {
		return fmt.Errorf("failed to parse svn log output: %w", err)
	}
	if len(log.Entries) == 0 {
		return fmt.Errorf("svn revision %s not found in %s", commit.Identifier, repo.CloneURL)
	}
	entry := log.Entries[0]

	if parsed, err := time.Parse(time.RFC3339Nano, entry.Date); err == nil {
		commit.Epoch = parsed.Unix()
	} else {
		p.Logger.Warn("unparseable svn date, keeping stored epoch", "date", entry.Date, "revision", entry.Revision)
	}
	commit.AuthorName = entry.Author
	commit.Summary = core.SummaryLine(entry.Msg)
	return p.Store.UpdateCommitMessage(ctx, commit)
}
