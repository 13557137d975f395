package invoke

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathResolverNotFound(t *testing.T) {
	resolver := PathResolver{LookPath: func(string) (string, error) {
		return "", errors.New("executable file not found in $PATH")
	}}
	_, err := resolver.Resolve("oci")
	if err == nil {
		t.Fatal("expected error")
	}
	if ErrorCode(err) != ErrorCodeBinaryNotFound {
		t.Fatalf("code = %q, want %q", ErrorCode(err), ErrorCodeBinaryNotFound)
	}
	if !strings.HasPrefix(ErrorMessage(err), "Unable to locate executable file: oci.") {
		t.Fatalf("message = %q", ErrorMessage(err))
	}
}

func TestPathResolverAbsolutizes(t *testing.T) {
	resolver := PathResolver{LookPath: func(name string) (string, error) {
		return filepath.Join("bin", name), nil
	}}
	path, err := resolver.Resolve(" oci ")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !filepath.IsAbs(path) || filepath.Base(path) != "oci" {
		t.Fatalf("path = %q, want absolute .../oci", path)
	}
}

func TestPathResolverEmptyName(t *testing.T) {
	if _, err := (PathResolver{}).Resolve(""); ErrorCode(err) != ErrorCodeBinaryNotFound {
		t.Fatalf("code = %q, want %q", ErrorCode(err), ErrorCodeBinaryNotFound)
	}
}
