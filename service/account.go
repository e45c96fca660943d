package service

import (
	"context"
	"errors"
	"fmt"

	"bilitool/constant"
	"bilitool/request"

	"go.uber.org/zap"
)

var ErrLoginFailed = errors.New("login by cookie failed, cookies may have expired")

// DailyTaskAPI is the subset of the platform API the account service needs.
type DailyTaskAPI interface {
	LoginByCookie(ctx context.Context) (*request.Response[request.UserInfo], error)
	GetDailyTaskRewardInfo(ctx context.Context) (*request.Response[request.DailyTaskInfo], error)
}

type AccountService struct {
	api      DailyTaskAPI
	logger   *zap.Logger
	dailyExp int64
	retry    RetryPolicy
}

type Option func(*AccountService)

func WithDailyExp(exp int64) Option {
	return func(s *AccountService) {
		if exp > 0 {
			s.dailyExp = exp
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *AccountService) {
		s.retry = p
	}
}

func NewAccountService(api DailyTaskAPI, logger *zap.Logger, opts ...Option) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AccountService{
		api:      api,
		logger:   logger,
		dailyExp: constant.EveryDayExp,
		retry:    DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the session cookies and logs the account status.
// It returns ErrLoginFailed when the platform rejects the cookies; transport
// errors are returned wrapped.
func (s *AccountService) Login(ctx context.Context) (*request.UserInfo, error) {
	resp, err := s.api.LoginByCookie(ctx)
	if err != nil {
		return nil, fmt.Errorf("login by cookie: %w", err)
	}

	if !resp.OK() || !resp.Data.IsLogin {
		fields := []zap.Field{}
		if resp != nil {
			fields = append(fields, zap.Int("code", resp.Code), zap.String("message", resp.Message))
		}
		s.logger.Warn("登录异常，Cookie可能失效了，请仔细检查DEDEUSERID、SESSDATA、BILI_JCT三项的值是否正确", fields...)
		return nil, ErrLoginFailed
	}

	info := resp.Data

	s.logger.Info("登录成功", zap.String("uname", info.FuzzyUname()))
	s.logger.Info("硬币余额", zap.Float64("coins", info.Coins()))

	level := info.LevelInfo
	if days, ok := DaysToNextLevel(level, s.dailyExp); ok {
		s.logger.Info("距离升级还需天数",
			zap.Int("next_level", level.CurrentLevel+1),
			zap.Int64("days", days))
	} else {
		s.logger.Info("当前等级经验值",
			zap.Int("level", level.CurrentLevel),
			zap.Int64("exp", level.CurrentExp))
	}

	return &info, nil
}

// DaysToNextLevel is (next_exp - current_exp) / dailyExp, truncated. ok is
// false at the maximum level or when the next threshold is unknown.
func DaysToNextLevel(level request.LevelInfo, dailyExp int64) (days int64, ok bool) {
	if level.CurrentLevel >= constant.MaxLevel || dailyExp <= 0 {
		return 0, false
	}

	next, ok := level.NextExp.Value()
	if !ok {
		return 0, false
	}

	return (next - level.CurrentExp) / dailyExp, true
}
