//go:build mage

// Package main provides build targets for the satchel project using Mage.
//
// Usage:
//
//	mage build      Compile the satchel binary to bin/
//	mage test       Run all tests
//	mage testRedis  Run the cache tests against a live Redis (REDIS_ADDR)
//	mage testPostgres  Run the storage tests against PostgreSQL (POSTGRES_DSN)
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install satchel to GOPATH/bin
package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "satchel"
	binaryDir  = "bin"
	cmdDir     = "./cmd/satchel"
)

// Build compiles the satchel binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRedis runs the cache tests against the Redis server at REDIS_ADDR
// (default localhost:6379).
func TestRedis() error {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	env := map[string]string{"SATCHEL_TEST_REDIS": addr}
	return sh.RunWithV(env, binGo, "test", "-run", "TestRedis", "-v", "./internal/cache/...")
}

// TestPostgres runs the storage tests against the database at POSTGRES_DSN.
func TestPostgres() error {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return errors.New("POSTGRES_DSN is not set")
	}
	env := map[string]string{"SATCHEL_TEST_POSTGRES": dsn}
	return sh.RunWithV(env, binGo, "test", "-v", "./internal/sqlstore/...")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}
