package tools

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHSpawner starts the tool on a remote Windows host through an OpenSSH
// session, one connection per process.
type SSHSpawner struct {
	Host                        string
	Port                        string
	User                        string
	KeyPath                     string
	Passphrase                  []byte
	KnownHostsPath              string
	InsecureSkipHostKeyChecking bool
	Timeout                     time.Duration
}

func (s SSHSpawner) Spawn(ctx context.Context, name string, args ...string) (Process, error) {
	client, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}

	fail := func(err error) (Process, error) {
		session.Close()
		client.Close()
		return nil, err
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return fail(fmt.Errorf("stdin pipe: %w", err))
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return fail(fmt.Errorf("stdout pipe: %w", err))
	}
	stderr, err := session.StderrPipe()
	if err != nil {
		return fail(fmt.Errorf("stderr pipe: %w", err))
	}
	if err := session.Start(joinCommand(name, args)); err != nil {
		return fail(err)
	}

	p := &sshProcess{
		client:  client,
		session: session,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		done:    make(chan struct{}),
	}
	go p.watch(ctx)
	return p, nil
}

type sshProcess struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	stdout  io.Reader
	stderr  io.Reader
	done    chan struct{}
}

func (p *sshProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *sshProcess) Stdout() io.Reader     { return p.stdout }
func (p *sshProcess) Stderr() io.Reader     { return p.stderr }

func (p *sshProcess) Wait() error {
	err := p.session.Wait()
	close(p.done)
	p.session.Close()
	p.client.Close()
	return err
}

// watch tears the connection down when ctx ends before the process does.
func (p *sshProcess) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		_ = p.session.Signal(ssh.SIGKILL)
		_ = p.client.Close()
	case <-p.done:
	}
}

func (s SSHSpawner) dial(ctx context.Context) (*ssh.Client, error) {
	address, err := s.address()
	if err != nil {
		return nil, err
	}

	config, err := s.clientConfig()
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: s.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return ssh.NewClient(clientConn, chans, reqs), nil
}

func (s SSHSpawner) address() (string, error) {
	host := strings.TrimSpace(s.Host)
	if host == "" {
		return "", fmt.Errorf("ssh host is required")
	}

	if s.Port != "" {
		return net.JoinHostPort(host, s.Port), nil
	}

	if _, _, err := net.SplitHostPort(host); err == nil {
		return host, nil
	}

	return net.JoinHostPort(host, "22"), nil
}

func (s SSHSpawner) clientConfig() (*ssh.ClientConfig, error) {
	if s.User == "" {
		return nil, fmt.Errorf("ssh user is required")
	}

	signer, err := s.signer()
	if err != nil {
		return nil, err
	}

	var hostKeyCallback ssh.HostKeyCallback
	if s.InsecureSkipHostKeyChecking {
		hostKeyCallback = ssh.InsecureIgnoreHostKey()
	} else {
		callback, err := s.knownHostsCallback()
		if err != nil {
			return nil, err
		}
		hostKeyCallback = callback
	}

	return &ssh.ClientConfig{
		User:            s.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         s.Timeout,
	}, nil
}

func (s SSHSpawner) signer() (ssh.Signer, error) {
	if s.KeyPath == "" {
		return nil, fmt.Errorf("ssh key path is required")
	}

	privateKey, err := os.ReadFile(s.KeyPath)
	if err != nil {
		return nil, err
	}

	if len(s.Passphrase) > 0 {
		return ssh.ParsePrivateKeyWithPassphrase(privateKey, s.Passphrase)
	}

	return ssh.ParsePrivateKey(privateKey)
}

func (s SSHSpawner) knownHostsCallback() (ssh.HostKeyCallback, error) {
	path := strings.TrimSpace(s.KnownHostsPath)
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}

	return knownhosts.New(path)
}

// joinCommand builds a remote command line for the Windows shell, quoting
// only the arguments that need it.
func joinCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return quoteArg(cmd)
	}

	var builder strings.Builder
	builder.WriteString(quoteArg(cmd))
	for _, arg := range args {
		builder.WriteByte(' ')
		builder.WriteString(quoteArg(arg))
	}

	return builder.String()
}

func quoteArg(value string) string {
	if value == "" {
		return `""`
	}
	if !strings.ContainsAny(value, " \t\"") {
		return value
	}

	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}
