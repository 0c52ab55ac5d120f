package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitwall-hub/pitwall/internal/logging"
	"github.com/pitwall-hub/pitwall/internal/server"
	"github.com/pitwall-hub/pitwall/internal/updater"
	"github.com/pitwall-hub/pitwall/internal/version"
)

func (s *cliState) updateCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Refresh stale schedule, session and standings artifacts",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			env, err := s.bootstrap("update")
			if err != nil {
				s.fail(err)
				return
			}
			job, err := env.newJob()
			if err != nil {
				s.fail(err)
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary := job.Run(ctx, updater.RunOptions{Force: force})
			printSummary(summary)
			if !summary.OK() {
				s.exitCode = exitFailure
			}
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "忽略新鲜度判断，强制刷新全部数据")
	return cmd
}

func (s *cliState) cleanupCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove cache files older than the retention window",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("days") && days < 1 {
				return fmt.Errorf("--days must be >= 1, got %d", days)
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			env, err := s.bootstrap("cleanup")
			if err != nil {
				s.fail(err)
				return
			}
			if days == 0 {
				days = env.cfg.Cache.RetentionDays
			}
			report := env.cache.Cleanup(days)
			if report.Err != nil {
				s.fail(report.Err)
				return
			}
			fmt.Fprintf(stdOut, "removed %d of %d cache files older than %d days", report.Removed, report.Scanned, days)
			if report.Failed > 0 {
				fmt.Fprintf(stdOut, " (%d failed)", report.Failed)
			}
			fmt.Fprintln(stdOut)
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "保留天数（默认使用配置中的 Cache.RetentionDays）")
	return cmd
}

func (s *cliState) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache and data directory statistics as JSON",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			env, err := s.bootstrap("stats")
			if err != nil {
				s.fail(err)
				return
			}
			stats, err := env.cache.Stats()
			if err != nil {
				s.fail(err)
				return
			}
			payload, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				s.fail(err)
				return
			}
			fmt.Fprintln(stdOut, string(payload))
		},
	}
}

func (s *cliState) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve artifacts over HTTP and refresh them periodically",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			env, err := s.bootstrap("serve")
			if err != nil {
				s.fail(err)
				return
			}
			job, err := env.newJob()
			if err != nil {
				s.fail(err)
				return
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := serve(ctx, env, job); err != nil {
				s.fail(fmt.Errorf("HTTP 服务启动失败: %w", err))
			}
		},
	}
}

// serve 启动 HTTP 服务，并在单个 goroutine 中按 RefreshInterval 运行更新任务。
func serve(ctx context.Context, env *commandEnv, job *updater.Job) error {
	app, err := server.NewApp(server.AppOptions{
		Logger: env.logger,
		Cache:  env.cache,
		Season: env.season,
	})
	if err != nil {
		return err
	}

	interval := env.cfg.Job.RefreshInterval.DurationValue()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			summary := job.Run(ctx, updater.RunOptions{})
			env.logger.WithField("action", "refresh").
				WithField("succeeded", summary.Succeeded).
				WithField("total", summary.Total).
				Info("periodic refresh finished")
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	port := env.cfg.Server.ListenPort
	fields := logging.BaseFields("listen", env.configPath)
	fields["port"] = port
	fields["season"] = env.season
	fields["refresh_interval"] = interval.String()
	fields["version"] = version.Full()
	env.logger.WithFields(fields).Info("Fiber 服务启动")

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		env.logger.WithField("action", "shutdown").Info("Fiber 服务停止")
		return app.Shutdown()
	}
}

func (s *cliState) checkConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			env, err := s.loadConfig("check_config")
			if err != nil {
				s.fail(err)
				return
			}
			fields := logging.BaseFields("check_config", env.configPath)
			fields["season"] = env.season
			fields["team"] = env.cfg.Global.Team
			fields["result"] = "ok"
			env.logger.WithFields(fields).Info("配置校验通过")

			source := env.configPath
			if source == "" {
				source = "defaults"
			}
			fmt.Fprintf(stdOut, "config ok (%s): season %d, cache %s, data %s\n",
				source, env.season, env.cfg.Cache.Dir, env.cfg.Cache.DataDir)
		},
	}
}

func (s *cliState) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print pitwall version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

// printSummary 输出每个阶段的人类可读结果。
func printSummary(summary updater.Summary) {
	for _, stage := range summary.Stages {
		mark := "ok"
		switch {
		case stage.Err != nil && stage.Critical:
			mark = "FAILED"
		case stage.Err != nil:
			mark = "warn"
		case stage.Skipped:
			mark = "fresh"
		}
		line := fmt.Sprintf("%-15s %-6s", stage.Name, mark)
		if stage.Detail != "" {
			line += " " + stage.Detail
		}
		if stage.Err != nil {
			line += " " + errorText(stage.Err)
		}
		fmt.Fprintln(stdOut, line)
	}
	fmt.Fprintf(stdOut, "%d/%d stages succeeded\n", summary.Succeeded, summary.Total)
}

func errorText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "(timed out)"
	}
	return "(" + err.Error() + ")"
}
