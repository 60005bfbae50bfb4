package languagetool

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	perr "prosefix/internal/platform/errors"
)

// LocalConfig configures a locally bootstrapped LanguageTool server
type LocalConfig struct {
	// Dir is the LanguageTool installation directory containing
	// languagetool-server.jar
	Dir  string
	Port int // default 8081

	// StartTimeout bounds the readiness poll after spawning, default 30s
	StartTimeout time.Duration
}

// Local is a handle to a server this process may have spawned.
// Stop is a no-op when the server was already running
type Local struct {
	BaseURL string
	cmd     *exec.Cmd
	log     zerolog.Logger
}

// EnsureLocal makes sure a LanguageTool server is listening on the configured
// port, spawning `java -cp languagetool-server.jar org.languagetool.server.HTTPServer`
// when it is not, and polling until the server answers or the timeout expires
func EnsureLocal(ctx context.Context, cfg LocalConfig, log zerolog.Logger) (*Local, error) {
	if cfg.Port <= 0 {
		cfg.Port = 8081
	}
	if cfg.StartTimeout <= 0 {
		cfg.StartTimeout = 30 * time.Second
	}
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port))
	base := "http://" + addr

	if portInUse(addr) {
		log.Debug().Str("addr", addr).Msg("languagetool already listening")
		return &Local{BaseURL: base, log: log}, nil
	}
	if cfg.Dir == "" {
		return nil, perr.Unavailablef("languagetool not running on %s and no install dir configured", addr)
	}

	jar := filepath.Join(cfg.Dir, "languagetool-server.jar")
	cmd := exec.CommandContext(ctx, "java",
		"-cp", jar,
		"org.languagetool.server.HTTPServer",
		"--port", strconv.Itoa(cfg.Port),
	)
	cmd.Dir = cfg.Dir
	if err := cmd.Start(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "spawn languagetool server")
	}
	log.Info().Str("jar", jar).Int("port", cfg.Port).Msg("starting languagetool server")

	deadline := time.Now().Add(cfg.StartTimeout)
	for {
		if portInUse(addr) {
			log.Info().Str("addr", addr).Msg("languagetool server ready")
			return &Local{BaseURL: base, cmd: cmd, log: log}, nil
		}
		if time.Now().After(deadline) {
			_ = cmd.Process.Kill()
			return nil, perr.Unavailablef("languagetool server did not become ready on %s within %s", addr, cfg.StartTimeout)
		}
		select {
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			return nil, perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "waiting for languagetool server")
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// Stop kills the spawned server process, if this handle owns one
func (l *Local) Stop() error {
	if l == nil || l.cmd == nil || l.cmd.Process == nil {
		return nil
	}
	if err := l.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stop languagetool server: %w", err)
	}
	_ = l.cmd.Wait()
	return nil
}

func portInUse(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
