package main

import (
	"errors"
	"fmt"
	"time"

	"bilitool/api"
	"bilitool/config"
	"bilitool/constant"
	"bilitool/logger"
	"bilitool/notify"
	"bilitool/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify the session cookies and show the account status",
	RunE:  runLogin,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show which daily tasks are completed today",
	RunE:  runTasks,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Login, read the daily task status and push a report",
	Long: `Run the full status check:

  - verify the session cookies
  - read today's daily task status
  - push a report to Telegram when TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are set`,
	RunE: runAll,
}

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	account  *service.AccountService
	notifier notify.Notifier
}

func setup() (*app, error) {
	dotenvErr := config.LoadDotEnv(envFile)

	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if dotenvErr != nil {
		log.Warn("Cannot load env file, using environment variables",
			zap.String("file", envFile),
			zap.Error(dotenvErr))
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}

	client := api.New(api.Options{
		BaseURL:     cfg.BaseURL,
		UserAgent:   cfg.UserAgent,
		Proxy:       cfg.Proxy,
		Timeout:     cfg.HTTPTimeout,
		RetryCount:  cfg.HTTPRetryCount,
		RetryWait:   cfg.HTTPRetryWait,
		Credentials: cfg.Credentials(),
	}, log)

	account := service.NewAccountService(client, log,
		service.WithDailyExp(cfg.DailyExp),
		service.WithRetryPolicy(service.RetryPolicy{
			MaxRetries: cfg.TaskStatusRetries,
			Wait:       cfg.TaskStatusRetryWait,
		}))

	var notifier notify.Notifier = notify.Nop{}
	if cfg.NotifyEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.ReportTimezone, log)
		if err != nil {
			log.Error("Telegram notifier disabled", zap.Error(err))
		} else {
			notifier = tg
		}
	}

	return &app{cfg: cfg, log: log, account: account, notifier: notifier}, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	_, err = a.account.Login(cmd.Context())
	if err != nil && !errors.Is(err, service.ErrLoginFailed) {
		a.log.Error("Login request failed", zap.Error(err))
	}
	return err
}

func runTasks(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	status, err := a.account.GetDailyTaskStatus(cmd.Context())
	if err != nil {
		a.log.Error("Daily task status request failed", zap.Error(err))
		return err
	}

	logTaskStatus(a.log, status)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx := cmd.Context()
	report := notify.Report{DailyExp: a.cfg.DailyExp, Time: time.Now()}

	user, err := a.account.Login(ctx)
	if err != nil {
		report.LoginErr = err
		if nerr := a.notifier.Notify(ctx, report); nerr != nil {
			a.log.Error("Failed to push report", zap.Error(nerr))
		}
		return err
	}
	report.User = user

	status, err := a.account.GetDailyTaskStatus(ctx)
	if err != nil {
		a.log.Error("Daily task status request failed", zap.Error(err))
	} else {
		logTaskStatus(a.log, status)
		report.Tasks = status
	}

	if nerr := a.notifier.Notify(ctx, report); nerr != nil {
		a.log.Error("Failed to push report", zap.Error(nerr))
	}

	return err
}

func logTaskStatus(log *zap.Logger, status *service.TaskStatus) {
	if !status.Trusted() {
		log.Warn("今日任务状态不可信",
			zap.Stringer("outcome", status.Outcome),
			zap.Int("attempts", status.Attempts),
			zap.Int("code", status.Code))
	}

	info := status.Info
	log.Info("今日任务完成情况",
		zap.Bool("login", info.Login),
		zap.Bool("watch", info.Watch),
		zap.Bool("share", info.Share),
		zap.Int("coinExp", info.Coins),
		zap.String("todayExp", fmt.Sprintf("%d/%d", info.TodayExp(), constant.EveryDayExp)))
}
