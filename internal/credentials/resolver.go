package credentials

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
)

// Source indicates where a credential was found
type Source string

const (
	SourceKeyring Source = "keyring"
	SourceEnv     Source = "env"
	SourceNone    Source = "none"
)

// Credentials represents a resolved provider credential
type Credentials struct {
	Provider string
	Token    string
	Source   Source
}

var dotenvOnce sync.Once

// loadDotEnv merges a .env file from the working directory into the
// environment, once per process. A missing file is fine.
func loadDotEnv() {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Resolver handles credential resolution from multiple sources with priority order
type Resolver struct {
	// Priority order: Keyring > Environment Variables (.env included)
}

// NewResolver creates a new credential resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve attempts to find a token using the priority order:
// 1. OS keyring
// 2. Environment variables, with .env loaded first
//
// Returns credentials with Source indicating where they were found.
func (r *Resolver) Resolve(providerName string) (*Credentials, error) {
	if providerName == "" {
		return nil, fmt.Errorf("provider name is required for credential resolution")
	}

	creds := &Credentials{
		Provider: providerName,
		Source:   SourceNone,
	}

	token, err := Get(providerName)
	if err == nil && token != "" {
		creds.Token = token
		creds.Source = SourceKeyring
		return creds, nil
	}

	loadDotEnv()
	if token := GetToken(providerName); token != "" {
		creds.Token = token
		creds.Source = SourceEnv
		return creds, nil
	}

	return creds, nil
}
