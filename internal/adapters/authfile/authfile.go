// Package authfile stores the credential and the signed in identity in a YAML
// file and publishes external changes to it
package authfile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"swifthub/internal/core/auth"
	perr "swifthub/internal/platform/errors"
	"swifthub/internal/platform/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultDebounce coalesces bursts of file events into one reload
const DefaultDebounce = 200 * time.Millisecond

type document struct {
	Kind     string     `yaml:"kind"`
	Token    string     `yaml:"token,omitempty"`
	Username string     `yaml:"username,omitempty"`
	Password string     `yaml:"password,omitempty"`
	Valid    bool       `yaml:"valid"`
	User     *auth.User `yaml:"user,omitempty"`
}

// File is the credential store backed by one YAML file
type File struct {
	path     string
	debounce time.Duration
	log      *logger.Logger

	mu   sync.RWMutex
	cred auth.Credential
	user auth.User
}

var (
	_ auth.Store     = (*File)(nil)
	_ auth.UserStore = (*File)(nil)
	_ auth.Writer    = (*File)(nil)
	_ auth.Watcher   = (*File)(nil)
)

// Open loads path. A missing file is an empty store
func Open(path string) (*File, error) {
	f := &File{path: path, debounce: DefaultDebounce, log: logger.Named("authfile")}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the backing file
func (f *File) Path() string { return f.path }

// Current returns the stored credential, None when nothing is stored
func (f *File) Current() auth.Credential {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cred
}

// IsValid reports whether the stored credential is present and valid
func (f *File) IsValid() bool { return f.Current().Valid() }

// CurrentUser returns the identity saved with the credential
func (f *File) CurrentUser() (auth.User, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.user, f.user.Login != ""
}

// Reload re-reads the file
func (f *File) Reload() error {
	cred, user, err := read(f.path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.cred, f.user = cred, user
	f.mu.Unlock()
	return nil
}

// Save writes c and u, replacing the file atomically with mode 0600
func (f *File) Save(ctx context.Context, c auth.Credential, u auth.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := auth.Validate(c); err != nil {
		return err
	}
	doc := document{
		Kind:     c.Kind().String(),
		Token:    c.Token(),
		Username: c.Username(),
		Password: c.Password(),
		Valid:    c.Valid(),
	}
	if u.Login != "" {
		doc.User = &u
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "encode credential file")
	}
	if err := writeAtomic(f.path, b); err != nil {
		return err
	}

	f.mu.Lock()
	f.cred, f.user = c, u
	f.mu.Unlock()
	f.log.Info().Str("path", f.path).Str("kind", c.Kind().String()).Msg("credential saved")
	return nil
}

// Clear removes the stored credential
func (f *File) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "remove credential file")
	}
	f.mu.Lock()
	f.cred, f.user = auth.None(), auth.User{}
	f.mu.Unlock()
	f.log.Info().Str("path", f.path).Msg("credential cleared")
	return nil
}

// Changes watches the parent directory and publishes the credential after
// every debounced change to the file. The channel closes when ctx is done
func (f *File) Changes(ctx context.Context) (<-chan auth.Credential, error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "create credential directory")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "create file watcher")
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "watch credential directory")
	}

	out := make(chan auth.Credential, 1)
	go f.watch(ctx, w, out)
	return out, nil
}

func (f *File) watch(ctx context.Context, w *fsnotify.Watcher, out chan<- auth.Credential) {
	defer close(out)
	defer func() { _ = w.Close() }()

	base := filepath.Base(f.path)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				timer.Reset(f.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.log.Warn().Err(err).Msg("credential watcher error")
		case <-timer.C:
			before := f.Current()
			if err := f.Reload(); err != nil {
				f.log.Warn().Err(err).Str("path", f.path).Msg("credential reload failed")
				continue
			}
			cur := f.Current()
			if cur == before {
				continue
			}
			f.log.Debug().Str("kind", cur.Kind().String()).Msg("credential changed on disk")
			select {
			case out <- cur:
			case <-ctx.Done():
				return
			}
		}
	}
}

func read(path string) (auth.Credential, auth.User, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return auth.None(), auth.User{}, nil
	}
	if err != nil {
		return auth.None(), auth.User{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "read credential file")
	}
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return auth.None(), auth.User{}, perr.Wrapf(err, perr.ErrorCodeConfig, "parse credential file %s", path)
	}
	cred, err := doc.credential()
	if err != nil {
		return auth.None(), auth.User{}, err
	}
	var u auth.User
	if doc.User != nil {
		u = *doc.User
	}
	return cred, u, nil
}

func (d document) credential() (auth.Credential, error) {
	kind, err := auth.ParseKind(d.Kind)
	if err != nil {
		return auth.None(), err
	}
	var c auth.Credential
	switch kind {
	case auth.KindNone:
		return auth.None(), nil
	case auth.KindOAuth:
		c = auth.OAuth(d.Token)
	case auth.KindPersonal:
		c = auth.Personal(d.Token)
	case auth.KindBasic:
		c = auth.Basic(d.Username, d.Password)
	}
	return c.WithValid(c.Valid() && d.Valid), nil
}

func writeAtomic(path string, b []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "create credential directory")
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "create temp credential file")
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "write credential file")
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "chmod credential file")
	}
	if err := tmp.Close(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "close credential file")
	}
	if err := os.Rename(name, path); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "replace credential file")
	}
	return nil
}
