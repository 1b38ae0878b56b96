// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the daemon needs at startup.
type Config struct {
	System struct {
		IsProd bool   // production mode switches logger config
		Listen string // HTTP listen address
		DBConn string // Postgres connection string
	}
	Cloud struct {
		Token      string   // Hetzner Cloud API token
		ServerType string   // instance size for new servers
		Image      string   // base image
		Location   string   // datacenter location
		SSHKeys    []string // ssh key names injected into instances
	}
	Deploy struct {
		PlaybookDir   string        // directory with rpc.yml / explorer.yml / ssl.yml
		SSHKeyPath    string        // private key for ansible
		ConfigTimeout time.Duration // configuration deployment watchdog
		CertWatchdog  time.Duration // certificate issuance watchdog
	}
	Provision struct {
		PollInterval time.Duration
		PollAttempts int
	}
}

// Load reads configuration from environment variables, applying defaults for
// the optional ones.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.System.IsProd = os.Getenv("MODE") == "production"
	cfg.System.Listen = envOr("LISTEN", ":8080")

	dbconn, ok := os.LookupEnv("DB_CONN")
	if !ok {
		return nil, fmt.Errorf("DB_CONN environment variable not set")
	}
	cfg.System.DBConn = dbconn

	token, ok := os.LookupEnv("HCLOUD_TOKEN")
	if !ok {
		return nil, fmt.Errorf("HCLOUD_TOKEN environment variable not set")
	}
	cfg.Cloud.Token = token

	cfg.Cloud.ServerType = envOr("CLOUD_SERVER_TYPE", "cx32")
	cfg.Cloud.Image = envOr("CLOUD_IMAGE", "ubuntu-24.04")
	cfg.Cloud.Location = envOr("CLOUD_LOCATION", "nbg1")
	if key, ok := os.LookupEnv("CLOUD_SSH_KEY"); ok {
		cfg.Cloud.SSHKeys = []string{key}
	}

	cfg.Deploy.PlaybookDir = envOr("ANSIBLE_PLAYBOOK_DIR", "/etc/blockscout-automation/playbooks")
	cfg.Deploy.SSHKeyPath = envOr("ANSIBLE_SSH_KEY", "/etc/blockscout-automation/id_ed25519")

	var err error
	if cfg.Deploy.ConfigTimeout, err = envDuration("CONFIG_DEPLOY_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Deploy.CertWatchdog, err = envDuration("CERT_WATCHDOG", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Provision.PollInterval, err = envDuration("PROVISION_POLL_INTERVAL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Provision.PollAttempts, err = envInt("PROVISION_POLL_ATTEMPTS", 30); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
