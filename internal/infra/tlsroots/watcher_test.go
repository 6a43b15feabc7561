package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// servedSerial asks the watcher for the certificate the next TLS
// handshake would get and returns its serial number.
func servedSerial(t *testing.T, w *Watcher) *big.Int {
	t.Helper()
	pair, err := w.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil {
		t.Fatalf("GetCertificate() error = %v", err)
	}
	if pair == nil || len(pair.Certificate) == 0 {
		t.Fatal("GetCertificate() returned empty pair")
	}
	leaf, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatalf("parse served leaf: %v", err)
	}
	return leaf.SerialNumber
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read %s: %v", src, err)
	}
	if err := os.WriteFile(dst, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", dst, err)
	}
}

func TestWatcher_ServesInitialPair(t *testing.T) {
	pair := newTestPair(t, 10)
	certFile, keyFile := pair.writeTo(t, t.TempDir())

	w, err := NewWatcher(certFile, keyFile, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if got := servedSerial(t, w); got.Int64() != 10 {
		t.Errorf("served serial = %v, want 10", got)
	}
}

func TestWatcher_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewWatcher(
		filepath.Join(dir, "cert.pem"),
		filepath.Join(dir, "key.pem"),
		WithLogger(quietLogger()),
	)
	if err == nil {
		t.Error("NewWatcher() with missing files returned nil error")
	}
}

func TestWatcher_ReloadsOnRotation(t *testing.T) {
	dir := t.TempDir()
	first := newTestPair(t, 20)
	certFile, keyFile := first.writeTo(t, dir)

	w, err := NewWatcher(certFile, keyFile,
		WithLogger(quietLogger()),
		WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	// Let the fsnotify watch attach before rotating the files.
	time.Sleep(100 * time.Millisecond)

	second := newTestPair(t, 21)
	second.writeTo(t, dir)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if servedSerial(t, w).Int64() == 21 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("served serial still %v after rotation, want 21", servedSerial(t, w))
}

func TestWatcher_KeepsOldPairOnBadRotation(t *testing.T) {
	dir := t.TempDir()
	first := newTestPair(t, 30)
	certFile, keyFile := first.writeTo(t, dir)

	w, err := NewWatcher(certFile, keyFile,
		WithLogger(quietLogger()),
		WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	// A cert written with a key that does not match it must not
	// replace the pair in service.
	mismatched := newTestPair(t, 31)
	badDir := t.TempDir()
	badCert, _ := mismatched.writeTo(t, badDir)
	copyFile(t, badCert, certFile)

	time.Sleep(300 * time.Millisecond)

	if got := servedSerial(t, w); got.Int64() != 30 {
		t.Errorf("served serial = %v after bad rotation, want 30", got)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	pair := newTestPair(t, 40)
	certFile, keyFile := pair.writeTo(t, t.TempDir())

	w, err := NewWatcher(certFile, keyFile, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.StartAsync()

	w.Stop()
	w.Stop()
}

func TestServerTLSConfig(t *testing.T) {
	pair := newTestPair(t, 50)
	certFile, keyFile := pair.writeTo(t, t.TempDir())

	w, err := NewWatcher(certFile, keyFile, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cfg := ServerTLSConfig(w)
	if cfg.GetCertificate == nil {
		t.Fatal("ServerTLSConfig().GetCertificate is nil")
	}
	if got := servedSerial(t, w); got.Int64() != 50 {
		t.Errorf("GetCertificate() leaf serial = %v, want 50", got)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %#x, want TLS 1.2", cfg.MinVersion)
	}
}
