package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/fastygo/taskboard/pkg/client"
)

const (
	paramServer      = "server"
	paramSessionFile = "session-file"
	paramTimeout     = "timeout"
	paramLogLevel    = "log-level"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    paramServer,
			Aliases: []string{"s"},
			EnvVars: []string{"TASKBOARD_SERVER"},
			Value:   "http://localhost:5000/api/v1",
			Usage:   "taskboard API base url",
		},
		&cli.StringFlag{
			Name:    paramSessionFile,
			EnvVars: []string{"TASKBOARD_SESSION_FILE"},
			Value:   defaultSessionFile(),
			Usage:   "file holding the signed-in token",
		},
		&cli.DurationFlag{
			Name:    paramTimeout,
			EnvVars: []string{"TASKBOARD_TIMEOUT"},
			Value:   30 * time.Second,
			Usage:   "request timeout",
		},
		&cli.StringFlag{
			Name:    paramLogLevel,
			EnvVars: []string{"TASKBOARD_LOG_LEVEL"},
			Value:   "warn",
			Usage:   "set logging level",
		},
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskboard-session"
	}
	return filepath.Join(dir, "taskboard", "session")
}

// newClient builds an API client whose session is backed by the session
// file: the stored token is loaded up front and the file is removed
// whenever the session is cleared.
func newClient(ctx *cli.Context) (*client.Client, error) {
	path := ctx.String(paramSessionFile)
	log := loggerFrom(ctx)

	token, err := readToken(path)
	if err != nil {
		return nil, err
	}

	session := client.NewSession(token)
	session.OnClear(func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn("could not remove session file")
		}
	})

	return client.New(
		client.WithBaseURL(ctx.String(paramServer)),
		client.WithTimeout(ctx.Duration(paramTimeout)),
		client.WithSession(session),
		client.WithUnauthorizedHandler(func() {
			fmt.Fprintln(ctx.App.ErrWriter, "session expired or revoked, run 'taskctl login' again")
		}),
	), nil
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func requireSignedIn(c *client.Client) error {
	if !c.Session().Authenticated() {
		return errors.New("not signed in, run 'taskctl login' first")
	}
	return nil
}
