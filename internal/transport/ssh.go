package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"svcseq/internal/services"
	"svcseq/pkg/logging"
)

// SSH runs sc.exe on a Windows jump host reachable over SSH. The jump host
// then talks to the target server, so only the jump host needs an SSH
// daemon. A fresh connection is dialed per call.
type SSH struct {
	Address string // host:port of the jump host
	User    string

	// KeyFile is a private key path. When empty the ssh-agent at
	// SSH_AUTH_SOCK is used.
	KeyFile string
	// KnownHostsFile is checked against the jump host's key. When empty,
	// ~/.ssh/known_hosts is used if it exists; otherwise host keys are not
	// verified and a warning is logged.
	KnownHostsFile string

	DialRetries       uint64
	DialRetryInterval time.Duration
	Timeout           time.Duration
}

// Name implements Transport.
func (s *SSH) Name() string { return string(KindSSH) }

// Query implements Transport.
func (s *SSH) Query(ctx context.Context, target services.ServiceTarget) (services.Report, error) {
	out, err := s.run(ctx, scCommandLine(target, "query"))
	if err != nil {
		return services.Report{}, fmt.Errorf("ssh sc query %s: %w", target, err)
	}
	return services.Report{Format: services.FormatSC, Raw: out}, nil
}

// Start implements Transport.
func (s *SSH) Start(ctx context.Context, target services.ServiceTarget) error {
	if _, err := s.run(ctx, scCommandLine(target, "start")); err != nil {
		return fmt.Errorf("ssh sc start %s: %w", target, err)
	}
	return nil
}

// scCommandLine renders a cmd.exe command line for the jump host.
func scCommandLine(target services.ServiceTarget, verb string) string {
	return fmt.Sprintf(`sc %s %s "%s"`, uncPath(target.Server), verb, strings.ReplaceAll(target.ServiceName, `"`, ""))
}

func (s *SSH) run(ctx context.Context, command string) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := s.dial(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open session: %w", err)
	}
	defer session.Close()

	// CombinedOutput has no context; closing the client unblocks it.
	stop := context.AfterFunc(ctx, func() { client.Close() })
	defer stop()

	out, err := session.CombinedOutput(command)
	output := strings.TrimSpace(string(out))
	if ctx.Err() != nil {
		return output, fmt.Errorf("%q on %s: %w", command, s.Address, ctx.Err())
	}
	if err != nil {
		if output != "" {
			return output, fmt.Errorf("%q on %s: %w: %s", command, s.Address, err, output)
		}
		return output, fmt.Errorf("%q on %s: %w", command, s.Address, err)
	}
	return output, nil
}

// dial connects to the jump host, retrying on a constant backoff.
func (s *SSH) dial(ctx context.Context) (*ssh.Client, error) {
	interval := s.DialRetryInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), s.DialRetries),
		ctx,
	)

	var client *ssh.Client
	err := backoff.RetryNotify(func() error {
		config, closeAuth, err := s.clientConfig()
		if err != nil {
			return backoff.Permanent(err)
		}
		defer closeAuth()

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", s.Address)
		if err != nil {
			return err
		}
		c, chans, reqs, err := ssh.NewClientConn(conn, s.Address, config)
		if err != nil {
			conn.Close()
			return err
		}
		client = ssh.NewClient(c, chans, reqs)
		return nil
	}, policy, func(err error, next time.Duration) {
		logging.Debug("SSHTransport", "Dial %s failed, retrying in %s: %v", s.Address, next, err)
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", s.Address, err)
	}
	return client, nil
}

func (s *SSH) clientConfig() (*ssh.ClientConfig, func(), error) {
	auth, closeAuth, err := s.authMethod()
	if err != nil {
		return nil, nil, err
	}

	hostKeyCallback, err := s.hostKeyCallback()
	if err != nil {
		closeAuth()
		return nil, nil, err
	}

	return &ssh.ClientConfig{
		User:            s.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback,
		Timeout:         s.Timeout,
	}, closeAuth, nil
}

// For mocking in tests
var sshUserHomeDir = os.UserHomeDir

func defaultKnownHostsFile() string {
	home, err := sshUserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (s *SSH) hostKeyCallback() (ssh.HostKeyCallback, error) {
	path := s.KnownHostsFile
	if path == "" {
		path = defaultKnownHostsFile()
	}
	if path == "" {
		logging.Warn("SSHTransport", "Host key of %s is not verified: no known_hosts file configured or found", s.Address)
		return ssh.InsecureIgnoreHostKey(), nil
	}

	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %s: %w", path, err)
	}
	return callback, nil
}

func (s *SSH) authMethod() (ssh.AuthMethod, func(), error) {
	if s.KeyFile != "" {
		key, err := os.ReadFile(s.KeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("parse key file %s: %w", s.KeyFile, err)
		}
		return ssh.PublicKeys(signer), func() {}, nil
	}

	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, errors.New("no ssh key file configured and SSH_AUTH_SOCK is not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("no ssh key file configured and cannot connect to the ssh agent: %w", err)
	}
	sshAgent := agent.NewClient(conn)
	return ssh.PublicKeysCallback(sshAgent.Signers), func() { conn.Close() }, nil
}
