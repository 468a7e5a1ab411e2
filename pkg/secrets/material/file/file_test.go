package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/kit/log"
)

func TestGetSources(t *testing.T) {
	dir := t.TempDir()
	bundlePath := filepath.Join(dir, "bundle.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := os.WriteFile(bundlePath, []byte("bundle bytes"), 0600); err != nil {
		t.Fatal("Unable to write bundle fixture")
	}
	if err := os.WriteFile(keyPath, []byte("key bytes"), 0600); err != nil {
		t.Fatal("Unable to write key fixture")
	}

	secrets := NewFile(bundlePath, keyPath, "", log.NewNopLogger())

	bundle := secrets.GetBundle()
	if !bundle.Readable() || string(bundle.Data()) != "bundle bytes" {
		t.Errorf("Bundle source is %+v", bundle)
	}
	if bundle.Path() != bundlePath {
		t.Errorf("Bundle path is %q; want %q", bundle.Path(), bundlePath)
	}
	if !secrets.GetKey().Readable() {
		t.Error("Key source should be readable")
	}
	if secrets.GetCRLChain().Provided() {
		t.Error("Empty CRL path should map to a missing source")
	}
}

func TestUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	secrets := NewFile(filepath.Join(dir, "absent.pem"), filepath.Join(dir, "absent.key"), filepath.Join(dir, "absent.crl"), log.NewNopLogger())

	for name, src := range map[string]interface{ Readable() bool }{
		"bundle": secrets.GetBundle(),
		"key":    secrets.GetKey(),
		"crl":    secrets.GetCRLChain(),
	} {
		if src.Readable() {
			t.Errorf("%s source should not be readable", name)
		}
	}
	if !secrets.GetCRLChain().Provided() {
		t.Error("Unreadable CRL chain is still a provided source")
	}
}
