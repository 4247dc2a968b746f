/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/insolar/formbot"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "formbot",
		Short: "Load test of the form submission endpoint",
	}
	root.AddCommand(runCmd(), targetCmd())
	return root
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run virtual users against the target host",
		Long: `Spawns virtual users, every user posts a new form to api/submit-form,
reads the forms back and waits a random time before the next cycle.

  formbot run --users 100 --spawn-rate 10 --run-time 300
  formbot run --config formbot.yaml --host http://localhost:9031/`,
		SilenceUsage: true,
		RunE:         runTest,
	}
	f := cmd.Flags()
	f.String("config", "", "yaml runner config")
	f.String("user", formbot.FormUserKind, fmt.Sprintf("user kind, one of: %s", strings.Join(formbot.RegisteredUsers(), ", ")))
	f.Int("users", 1, "concurrent virtual users")
	f.Int("spawn-rate", 1, "users started per second")
	f.Int("run-time", 60, "test duration, seconds")
	f.String("host", formbot.DefaultTargetHost, "target base url")
	f.String("transport", formbot.TransportHTTP, "http|fasthttp")
	f.Bool("csv", false, "write csv reports")
	f.Bool("html", false, "render html percentiles chart, implies --csv")
	f.String("report-dir", "", "reports directory")
	f.Bool("dump", false, "dump http requests and responses")
	f.Bool("fail-on-first-error", false, "stop on first failed cycle")
	f.Int("prometheus-port", 0, "serve prometheus metrics on port, 0 disables")
	f.String("log-level", "info", "debug|info|warn|error")
	f.String("log-encoding", "console", "console|json")
	return cmd
}

func runTest(cmd *cobra.Command, _ []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}
	kind, _ := cmd.Flags().GetString("user")
	prototype, err := formbot.UserFromString(kind)
	if err != nil {
		return err
	}
	r, err := formbot.NewRunner(cfg, prototype)
	if err != nil {
		return err
	}
	m, err := r.Run(context.Background())
	if m != nil {
		fmt.Printf("cycles: %d, success: %.2f%%, p50: %s, p95: %s, p99: %s, max: %s\n",
			m.Requests,
			m.Success*100,
			m.Latencies.P50,
			m.Latencies.P95,
			m.Latencies.P99,
			m.Latencies.Max,
		)
	}
	if errors.Is(err, formbot.ErrRunFailed) {
		return fmt.Errorf("test failed: %w", err)
	}
	return err
}

// configFromFlags loads config file if any, explicitly set flags override it
func configFromFlags(cmd *cobra.Command) (*formbot.RunnerConfig, error) {
	f := cmd.Flags()
	cfg := &formbot.RunnerConfig{User: formbot.DefaultUserConfig()}
	if path, _ := f.GetString("config"); path != "" {
		loaded, err := formbot.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cfg.ReportOptions == nil {
		cfg.ReportOptions = &formbot.ReportOptions{}
	}
	setInt := func(name string, dst *int) {
		if f.Changed(name) || *dst == 0 {
			*dst, _ = f.GetInt(name)
		}
	}
	setString := func(name string, dst *string) {
		if f.Changed(name) || *dst == "" {
			*dst, _ = f.GetString(name)
		}
	}
	setBool := func(name string, dst *bool) {
		if f.Changed(name) {
			*dst, _ = f.GetBool(name)
		}
	}
	setInt("users", &cfg.Users)
	setInt("spawn-rate", &cfg.SpawnRate)
	setInt("run-time", &cfg.TestTimeSec)
	setString("host", &cfg.User.TargetHost)
	setString("transport", &cfg.Transport)
	setString("log-level", &cfg.LogLevel)
	setString("log-encoding", &cfg.LogEncoding)
	setString("report-dir", &cfg.ReportOptions.Dir)
	setBool("csv", &cfg.ReportOptions.CSV)
	setBool("html", &cfg.ReportOptions.HTML)
	setBool("dump", &cfg.DumpTransport)
	setBool("fail-on-first-error", &cfg.FailOnFirstError)
	if cfg.ReportOptions.HTML {
		cfg.ReportOptions.CSV = true
	}
	if port, _ := f.GetInt("prometheus-port"); port > 0 {
		cfg.Prometheus = &formbot.Prometheus{Enable: true, Port: port}
	}
	return cfg, nil
}

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Serve in-memory form endpoint to test against",
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			sleep, _ := cmd.Flags().GetDuration("sleep")
			srv := formbot.RunTestServer(addr, formbot.NewFormService(sleep))
			log.Printf("serving form stub on %s", addr)
			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "0.0.0.0:9031", "listen address")
	cmd.Flags().Duration("sleep", 0, "artificial handler latency")
	return cmd
}
