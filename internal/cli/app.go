package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shopkeep/internal/auth"
	"github.com/mesh-intelligence/shopkeep/internal/logger"
	"github.com/mesh-intelligence/shopkeep/internal/pos"
	"github.com/mesh-intelligence/shopkeep/internal/sqlite"
	"github.com/mesh-intelligence/shopkeep/pkg/types"
)

// app is everything a command needs, wired from the resolved settings.
type app struct {
	settings settings
	log      *logger.Logger
	backend  *sqlite.Backend
	auth     *auth.Authenticator
	pos      *pos.Service
}

// openApp loads settings and attaches the store. Attaching ensures every
// dataset. The caller must Close the app.
func openApp(cmd *cobra.Command) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	s.log.Out = cmd.ErrOrStderr()
	log := logger.New(s.log)

	backend := sqlite.NewBackend(sqlite.WithLogger(log.Zerolog()))
	if err := backend.Attach(s.store); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	users, err := backend.Dataset(types.DatasetUsers)
	if err != nil {
		backend.Detach()
		return nil, err
	}

	return &app{
		settings: s,
		log:      log,
		backend:  backend,
		auth:     auth.NewAuthenticator(users, s.masterKey, log.Zerolog()),
		pos:      pos.NewService(backend, backend, pos.WithLogger(log.Zerolog())),
	}, nil
}

// Close detaches the store.
func (a *app) Close() error {
	return a.backend.Detach()
}

// session unlocks the terminal and logs in with the credentials from the
// flags or the environment.
func (a *app) session() (*auth.Session, error) {
	s := a.auth.NewSession()
	if s.State() == auth.StateLocked {
		if err := a.auth.Unlock(s, firstNonEmpty(flags.unlockKey, os.Getenv(envUnlock))); err != nil {
			return nil, err
		}
	}
	user := firstNonEmpty(flags.user, os.Getenv(envUser))
	if user == "" {
		return nil, fmt.Errorf("%w: pass --user and --password", types.ErrUnauthenticated)
	}
	if err := a.auth.Login(s, user, firstNonEmpty(flags.password, os.Getenv(envPassword))); err != nil {
		return nil, err
	}
	return s, nil
}

// withApp opens the app, runs fn and closes the app. An administrator
// password generated along the way is printed to stderr even when fn
// fails; it is never stored in the clear.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.announcePassword(cmd.ErrOrStderr())
	return fn(a)
}

// announcePassword prints a pending generated administrator password.
func (a *app) announcePassword(w io.Writer) {
	if pw := a.backend.TakeGeneratedPassword(); pw != "" {
		printGeneratedPassword(w, a.settings.store.Admin.Username, pw)
	}
}

func printGeneratedPassword(w io.Writer, username, pw string) {
	fmt.Fprintf(w, "Administrator %s created with password %s\n", types.NormalizeIdentity(username), pw)
	fmt.Fprintln(w, "It is shown only once.")
}

// withSession is withApp for commands that need a logged-in user.
func withSession(cmd *cobra.Command, fn func(a *app, s *auth.Session) error) error {
	return withApp(cmd, func(a *app) error {
		s, err := a.session()
		if err != nil {
			return err
		}
		return fn(a, s)
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNotices writes one line per reconciliation that changed something.
func printNotices(w io.Writer, results []*types.Result) {
	for _, res := range results {
		if notice := res.Report.Notice(); notice != "" {
			fmt.Fprintln(w, notice)
		}
	}
}
