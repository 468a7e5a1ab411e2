package validator

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/lamassuiot/ca-material-validator/pkg/depot"
	"github.com/lamassuiot/ca-material-validator/pkg/engine"

	"github.com/go-kit/kit/log"
)

type fakeSecrets struct {
	bundle engine.Source
	key    engine.Source
	crl    engine.Source
}

func (f *fakeSecrets) GetBundle() engine.Source   { return f.bundle }
func (f *fakeSecrets) GetKey() engine.Source      { return f.key }
func (f *fakeSecrets) GetCRLChain() engine.Source { return f.crl }

type fakeDepot struct {
	runs []depot.Run
}

func (f *fakeDepot) InsertRun(run *depot.Run) error {
	run.Id = len(f.runs) + 1
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeDepot) GetRuns(limit int) ([]depot.Run, error) {
	if len(f.runs) > limit {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func testMaterial(t *testing.T) Material {
	t.Helper()

	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal("Unable to generate CA key")
	}
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Service Test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	if err != nil {
		t.Fatal("Unable to create CA certificate")
	}
	caCert, err := x509.ParseCertificate(caDER)
	if err != nil {
		t.Fatal("Unable to parse CA certificate")
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal("Unable to generate leaf key")
	}
	leafTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: "Service Test Signer"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	leafDER, err := x509.CreateCertificate(rand.Reader, leafTemplate, caCert, &leafKey.PublicKey, caKey)
	if err != nil {
		t.Fatal("Unable to create leaf certificate")
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(leafKey)
	if err != nil {
		t.Fatal("Unable to marshal leaf key")
	}

	bundle := append(
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: leafDER}),
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER})...,
	)
	return Material{
		Bundle: string(bundle),
		Key:    string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})),
	}
}

func TestValidate(t *testing.T) {
	d := &fakeDepot{}
	srv := NewService(nil, d, log.NewNopLogger())

	report, err := srv.Validate(context.Background(), testMaterial(t))
	if err != nil {
		t.Fatalf("Service returned unexpected error: %s", err)
	}
	if !report.Valid() {
		t.Fatalf("Expected valid report, got issues: %+v", report.Issues)
	}
	if report.WarningCount() != 1 {
		t.Errorf("Expected the missing CRL chain warning, got %+v", report.Issues)
	}
	if len(d.runs) != 1 {
		t.Fatalf("Expected 1 recorded run, got %d", len(d.runs))
	}
	if !d.runs[0].Valid || d.runs[0].Subject != "Service Test Signer" {
		t.Errorf("Recorded run is %+v", d.runs[0])
	}
}

func TestValidateRecordsFailedRuns(t *testing.T) {
	d := &fakeDepot{}
	srv := NewService(nil, d, log.NewNopLogger())

	m := testMaterial(t)
	m.Bundle = "not pem data"
	report, err := srv.Validate(context.Background(), m)
	if err != nil {
		t.Fatalf("Service returned unexpected error: %s", err)
	}
	if report.Valid() {
		t.Fatal("Expected invalid report")
	}
	if len(d.runs) != 1 || d.runs[0].Valid {
		t.Errorf("Recorded runs are %+v", d.runs)
	}
}

func TestValidateStored(t *testing.T) {
	m := testMaterial(t)
	secrets := &fakeSecrets{
		bundle: engine.NewSource("bundle", []byte(m.Bundle)),
		key:    engine.UnreadableSource("key.pem", errors.New("permission denied")),
		crl:    engine.MissingSource(),
	}
	srv := NewService(secrets, nil, log.NewNopLogger())

	report, err := srv.ValidateStored(context.Background())
	if err != nil {
		t.Fatalf("Service returned unexpected error: %s", err)
	}
	if report.Valid() {
		t.Fatal("Expected invalid report for unreadable key")
	}
	if report.ErrorCount() != 1 {
		t.Errorf("Expected exactly 1 error, got %+v", report.Issues)
	}
}

func TestValidateStoredWithoutBackend(t *testing.T) {
	srv := NewService(nil, nil, log.NewNopLogger())

	if _, err := srv.ValidateStored(context.Background()); err != ErrNoSecretsBackend {
		t.Errorf("Got error %v; want %v", err, ErrNoSecretsBackend)
	}
}

func TestHistory(t *testing.T) {
	d := &fakeDepot{}
	for i := 0; i < 30; i++ {
		d.InsertRun(&depot.Run{StartedAt: time.Now().UTC(), Subject: "Service Test Signer", Valid: true})
	}
	srv := NewService(nil, d, log.NewNopLogger())

	runs, err := srv.History(context.Background(), 0)
	if err != nil {
		t.Fatalf("Service returned unexpected error: %s", err)
	}
	if len(runs) != 20 {
		t.Errorf("Got %d runs; want the default limit of 20", len(runs))
	}

	if _, err := NewService(nil, nil, log.NewNopLogger()).History(context.Background(), 5); err != ErrNoDepot {
		t.Errorf("Got error %v; want %v", err, ErrNoDepot)
	}
}
