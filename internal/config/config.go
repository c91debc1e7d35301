// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package config loads sdkpackager settings from flags, environment and a YAML file.
package config

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/isomorphic-tools/sdkpackager/pkg/site"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read, e.g. SDKPACKAGER_PROXY_HOST.
const EnvPrefix = "sdkpackager"

// FileName is the default config file, looked up in the home directory.
const FileName = ".sdkpackager.yaml"

// Keys.
const (
	KeyHost               = "host"
	KeyLoginPath          = "login-path"
	KeyLogoutPath         = "logout-path"
	KeyUsername           = "username"
	KeyPassword           = "password"
	KeyWorkdir            = "workdir"
	KeyLogLevel           = "log-level"
	KeyProxyHost          = "proxy.host"
	KeyProxyPort          = "proxy.port"
	KeyProxyUsername      = "proxy.username"
	KeyProxyPassword      = "proxy.password"
	KeyProxyNonProxyHosts = "proxy.non-proxy-hosts"
	KeyRepositoryURL      = "repository.url"
	KeyRepositoryUsername = "repository.username"
	KeyRepositoryPassword = "repository.password"
	KeyRepositoryLocal    = "repository.local"
)

// Config holds the settings shared by every command.
type Config struct {
	Host       string           `mapstructure:"host"`
	LoginPath  string           `mapstructure:"login-path"`
	LogoutPath string           `mapstructure:"logout-path"`
	Username   string           `mapstructure:"username"`
	Password   string           `mapstructure:"password"`
	Workdir    string           `mapstructure:"workdir"`
	LogLevel   string           `mapstructure:"log-level"`
	Proxy      ProxyConfig      `mapstructure:"proxy"`
	Repository RepositoryConfig `mapstructure:"repository"`
}

// ProxyConfig is an optional HTTP proxy for the vendor site.
type ProxyConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	NonProxyHosts string `mapstructure:"non-proxy-hosts"`
}

// RepositoryConfig locates the Maven repositories artifacts are installed
// or deployed to.
type RepositoryConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Local    string `mapstructure:"local"`
}

// SetDefaults registers every key with v so environment variables are seen
// by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	v.SetDefault(KeyHost, site.DefaultHost)
	v.SetDefault(KeyLoginPath, site.DefaultLoginPath)
	v.SetDefault(KeyLogoutPath, site.DefaultLogoutPath)
	v.SetDefault(KeyWorkdir, filepath.Join(os.TempDir(), "sdkpackager"))
	v.SetDefault(KeyLogLevel, log.InfoLevel.String())
	v.SetDefault(KeyRepositoryLocal, filepath.Join(home, ".m2", "repository"))
	for _, k := range []string{
		KeyUsername, KeyPassword,
		KeyProxyHost, KeyProxyUsername, KeyProxyPassword, KeyProxyNonProxyHosts,
		KeyRepositoryURL, KeyRepositoryUsername, KeyRepositoryPassword,
	} {
		v.SetDefault(k, "")
	}
	v.SetDefault(KeyProxyPort, 0)
}

// BindFlags declares a persistent flag per site and proxy key and binds it to v.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, f := range []struct {
		key, usage string
	}{
		{KeyHost, "vendor site base URL"},
		{KeyUsername, "vendor site account name"},
		{KeyPassword, "vendor site account password"},
		{KeyWorkdir, "directory downloads are unpacked under"},
		{KeyLogLevel, "log level (debug, info, warn, error)"},
		{KeyProxyHost, "HTTP proxy host"},
		{KeyProxyNonProxyHosts, "hosts reached without the proxy, separated by , ; or |"},
	} {
		flags.String(f.key, v.GetString(f.key), f.usage)
		if err := v.BindPFlag(f.key, flags.Lookup(f.key)); err != nil {
			return errors.Wrapf(err, "binding %s", f.key)
		}
	}
	flags.Int(KeyProxyPort, v.GetInt(KeyProxyPort), "HTTP proxy port")
	return errors.Wrapf(v.BindPFlag(KeyProxyPort, flags.Lookup(KeyProxyPort)), "binding %s", KeyProxyPort)
}

// ReadFile merges the YAML file at path into v. An empty path reads
// FileName from the home directory when it exists.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigType("yaml")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, FileName)
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	log.Debugf("Using config file %s", v.ConfigFileUsed())
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects malformed URLs, ports and log levels.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, KeyLogLevel)
	}
	if u, err := url.Parse(c.Host); err != nil || u.Host == "" {
		return errors.Errorf("%s: %q is not an absolute URL", KeyHost, c.Host)
	}
	if c.Workdir == "" {
		return errors.Errorf("%s must be set", KeyWorkdir)
	}
	if c.Proxy.Port < 0 || c.Proxy.Port > 65535 {
		return errors.Errorf("%s: %d out of range", KeyProxyPort, c.Proxy.Port)
	}
	if c.Proxy.Host != "" && c.Proxy.Port == 0 {
		return errors.Errorf("%s is required with %s", KeyProxyPort, KeyProxyHost)
	}
	if c.Repository.URL != "" {
		if u, err := url.Parse(c.Repository.URL); err != nil || u.Host == "" {
			return errors.Errorf("%s: %q is not an absolute URL", KeyRepositoryURL, c.Repository.URL)
		}
	}
	return nil
}

// Site returns the session settings. userAgent identifies the client.
func (c *Config) Site(userAgent string) site.Config {
	sc := site.Config{
		Host:       c.Host,
		LoginPath:  c.LoginPath,
		LogoutPath: c.LogoutPath,
		Username:   c.Username,
		Password:   c.Password,
		UserAgent:  userAgent,
	}
	if c.Proxy.Host != "" {
		sc.Proxy = &site.Proxy{
			Host:          c.Proxy.Host,
			Port:          c.Proxy.Port,
			Username:      c.Proxy.Username,
			Password:      c.Proxy.Password,
			NonProxyHosts: c.Proxy.NonProxyHosts,
		}
	}
	return sc
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Config stored by NewContext.
func FromContext(ctx context.Context) (*Config, error) {
	c, ok := ctx.Value(contextKey{}).(*Config)
	if !ok {
		return nil, errors.New("no configuration loaded")
	}
	return c, nil
}
