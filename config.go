/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package formbot

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultTargetHost placeholder address of the form service load balancer
	DefaultTargetHost = "http://minha--myloa-m9vwhwmang54-1101900728.us-east-2.elb.amazonaws.com/"
	DefaultMinWaitSec = 1
	DefaultMaxWaitSec = 5

	TransportHTTP     = "http"
	TransportFastHTTP = "fasthttp"
)

// UserConfig describes one form virtual user, it is never mutated after construction
type UserConfig struct {
	// MinWaitSec lower bound of the pause between cycles
	MinWaitSec float64 `yaml:"min_wait_seconds"`
	// MaxWaitSec upper bound of the pause between cycles
	MaxWaitSec float64 `yaml:"max_wait_seconds"`
	// TargetHost base url, the form path is resolved against it
	TargetHost string `yaml:"target_host"`
}

// DefaultUserConfig returns wait bounds of [1, 5] seconds against the default host
func DefaultUserConfig() UserConfig {
	return UserConfig{
		MinWaitSec: DefaultMinWaitSec,
		MaxWaitSec: DefaultMaxWaitSec,
		TargetHost: DefaultTargetHost,
	}
}

// DefaultCfgValues fills empty host, zero wait bounds mean the default [1, 5] seconds
func (c *UserConfig) DefaultCfgValues() {
	if c.TargetHost == "" {
		c.TargetHost = DefaultTargetHost
	}
	if c.MinWaitSec == 0 && c.MaxWaitSec == 0 {
		c.MinWaitSec = DefaultMinWaitSec
		c.MaxWaitSec = DefaultMaxWaitSec
	}
}

// Validate checks user settings and returns a list of strings with problems.
func (c UserConfig) Validate() (list []string) {
	if c.MinWaitSec < 0 {
		list = append(list, "please set min wait >= 0, seconds")
	}
	if c.MaxWaitSec < c.MinWaitSec {
		list = append(list, "please set max wait >= min wait, seconds")
	}
	if c.TargetHost == "" {
		list = append(list, "please set target host")
		return
	}
	u, err := url.Parse(c.TargetHost)
	if err != nil || !u.IsAbs() || u.Host == "" {
		list = append(list, fmt.Sprintf("target host is not an absolute url: %q", c.TargetHost))
	}
	return
}

// ReportOptions selects runner report outputs
type ReportOptions struct {
	// CSV writes every cycle result and per tick percentiles to csv files
	CSV bool `yaml:"csv"`
	// HTML renders percentiles chart from csv, requires CSV
	HTML bool `yaml:"html"`
	// Dir directory for report files, current directory if empty
	Dir string `yaml:"dir"`
}

// Prometheus metrics endpoint options
type Prometheus struct {
	Enable bool `yaml:"enable"`
	Port   int  `yaml:"port"`
}

// RunnerConfig runner configuration
type RunnerConfig struct {
	// Name of a runner instance
	Name string `yaml:"name"`
	// Users amount of concurrent virtual users
	Users int `yaml:"users"`
	// SpawnRate users started per second
	SpawnRate int `yaml:"spawn_rate"`
	// UserTimeoutSec timeout of one user cycle
	UserTimeoutSec int `yaml:"user_timeout_sec"`
	// TestTimeSec test duration
	TestTimeSec int `yaml:"test_time_sec"`
	// Transport http|fasthttp
	Transport string `yaml:"transport"`
	// DumpTransport dump http requests to stdout
	DumpTransport bool `yaml:"dump_transport"`
	// GoroutinesDump dumps goroutines on exit signal
	GoroutinesDump bool `yaml:"goroutines_dump"`
	// FailOnFirstError stops the test on first failed cycle
	FailOnFirstError bool `yaml:"fail_on_first_error"`
	// LogLevel debug|info, etc.
	LogLevel string `yaml:"log_level"`
	// LogEncoding json|console
	LogEncoding string `yaml:"log_encoding"`
	// User form virtual user settings
	User          UserConfig     `yaml:"user"`
	ReportOptions *ReportOptions `yaml:"report"`
	Prometheus    *Prometheus    `yaml:"prometheus"`
}

// Validate checks all settings and returns a list of strings with problems.
func (c RunnerConfig) Validate() (list []string) {
	if c.Users <= 0 {
		list = append(list, "please set users > 0")
	}
	if c.SpawnRate <= 0 {
		list = append(list, "please set spawn rate > 0, users per second")
	}
	if c.UserTimeoutSec <= 0 {
		list = append(list, "please set user timeout > 0, seconds")
	}
	if c.TestTimeSec <= 0 {
		list = append(list, "please set test time > 0, seconds")
	}
	switch c.Transport {
	case TransportHTTP, TransportFastHTTP:
	default:
		list = append(list, fmt.Sprintf("unknown transport: %q", c.Transport))
	}
	if c.ReportOptions != nil && c.ReportOptions.HTML && !c.ReportOptions.CSV {
		list = append(list, "html report requires csv report")
	}
	list = append(list, c.User.Validate()...)
	return
}

// DefaultCfgValues fills zero settings with defaults
func (c *RunnerConfig) DefaultCfgValues() {
	if c.Name == "" {
		c.Name = "formbot"
	}
	if c.SpawnRate == 0 {
		c.SpawnRate = c.Users
	}
	if c.UserTimeoutSec == 0 {
		c.UserTimeoutSec = 10
	}
	if c.Transport == "" {
		c.Transport = TransportHTTP
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogEncoding == "" {
		c.LogEncoding = "console"
	}
	c.User.DefaultCfgValues()
	if c.ReportOptions == nil {
		c.ReportOptions = &ReportOptions{}
	}
	if c.Prometheus != nil && c.Prometheus.Enable && c.Prometheus.Port == 0 {
		c.Prometheus.Port = 2112
	}
}

// LoadConfig reads runner config from yaml file
func LoadConfig(path string) (*RunnerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses yaml runner config, user section defaults to DefaultUserConfig
func ParseConfig(data []byte) (*RunnerConfig, error) {
	cfg := &RunnerConfig{User: DefaultUserConfig()}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func validationError(problems []string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
}
