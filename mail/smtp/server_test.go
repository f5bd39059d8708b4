package smtp

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// generateTestCert generates a self-signed certificate for testing
func generateTestCert(t *testing.T) tls.Certificate {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Test SMTP"}, CommonName: "localhost"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
}

// transaction is what the test server saw for one delivered message.
type transaction struct {
	From     string
	Rcpt     []string
	Data     string
	TLS      bool
	AuthUsed bool
}

// miniSMTPServer is a minimal SMTP server that records transactions.
type miniSMTPServer struct {
	listener net.Listener
	cert     *tls.Certificate
	auth     bool
	rejectTo string

	mu           sync.Mutex
	transactions []transaction
}

type serverOption func(*miniSMTPServer)

func withSTARTTLS(t *testing.T) serverOption {
	cert := generateTestCert(t)
	return func(s *miniSMTPServer) { s.cert = &cert }
}

func withAuth() serverOption {
	return func(s *miniSMTPServer) { s.auth = true }
}

func rejectingRcpt(addr string) serverOption {
	return func(s *miniSMTPServer) { s.rejectTo = addr }
}

func startMiniSMTPServer(t *testing.T, opts ...serverOption) *miniSMTPServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "failed to listen")

	s := &miniSMTPServer{listener: listener}
	for _, opt := range opts {
		opt(s)
	}
	t.Cleanup(func() { _ = listener.Close() })

	go s.run()
	return s
}

func (s *miniSMTPServer) config() Config {
	addr := s.listener.Addr().(*net.TCPAddr)
	return Config{
		Host:     "127.0.0.1",
		Port:     addr.Port,
		TLS:      true,
		Insecure: true,
		Timeout:  5 * time.Second,
	}
}

func (s *miniSMTPServer) received() []transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transaction(nil), s.transactions...)
}

func (s *miniSMTPServer) run() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *miniSMTPServer) handleConn(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)
	reply := func(lines ...string) {
		for _, l := range lines {
			writer.WriteString(l + "\r\n")
		}
		writer.Flush()
	}

	var tx transaction
	reply("220 localhost ESMTP Test Server")

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "EHLO"):
			ext := []string{"250-localhost"}
			if s.cert != nil && !tx.TLS {
				ext = append(ext, "250-STARTTLS")
			}
			if s.auth {
				ext = append(ext, "250-AUTH PLAIN")
			}
			reply(append(ext, "250 HELP")...)
		case upper == "STARTTLS":
			reply("220 Ready to start TLS")
			tlsConn := tls.Server(conn, &tls.Config{
				Certificates: []tls.Certificate{*s.cert},
				MinVersion:   tls.VersionTLS12,
			})
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			reader = bufio.NewReader(tlsConn)
			writer = bufio.NewWriter(tlsConn)
			tx.TLS = true
		case strings.HasPrefix(upper, "AUTH PLAIN"):
			tx.AuthUsed = true
			reply("235 OK")
		case strings.HasPrefix(upper, "MAIL FROM:"):
			tx.From = trimPath(line[len("MAIL FROM:"):])
			reply("250 OK")
		case strings.HasPrefix(upper, "RCPT TO:"):
			addr := trimPath(line[len("RCPT TO:"):])
			if addr == s.rejectTo {
				reply("550 No such user")
				continue
			}
			tx.Rcpt = append(tx.Rcpt, addr)
			reply("250 OK")
		case upper == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var data strings.Builder
			for {
				l, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				data.WriteString(strings.TrimPrefix(l, "."))
			}
			tx.Data = data.String()
			s.mu.Lock()
			s.transactions = append(s.transactions, tx)
			s.mu.Unlock()
			tx = transaction{TLS: tx.TLS}
			reply("250 OK")
		case upper == "QUIT":
			reply("221 Bye")
			return
		case upper == "RSET" || upper == "NOOP":
			reply("250 OK")
		default:
			reply("500 Syntax error")
		}
	}
}

func trimPath(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	return strings.Trim(s, "<>")
}
