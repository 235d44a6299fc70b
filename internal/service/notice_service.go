package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"siwes-logbook/internal/dto"
	"siwes-logbook/pkg/redis"
)

// 提示级别
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// NoticeService 一次性提示消息
// 每条提示只投递一次：存储可用时由下一次读取视图返回并清除，否则随写操作响应返回
type NoticeService interface {
	// Push 记录一条提示，stored 表示已写入存储；存储失败只记日志
	Push(ctx context.Context, userID, level, message string) (n dto.Notice, stored bool)
	// Inline 写入提示并返回需随本次响应返回的部分（已存储的不重复返回）
	Inline(ctx context.Context, userID, level, message string) []dto.Notice
	// Pop 取出并清除用户全部提示，存储不可用时返回空列表
	Pop(ctx context.Context, userID string) []dto.Notice
}

type noticeService struct {
	store  NoticeStore
	ttl    time.Duration
	logger *zap.Logger
}

// NewNoticeService 创建 NoticeService 实例，store 可为 nil
func NewNoticeService(store NoticeStore, ttl time.Duration, logger *zap.Logger) NoticeService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &noticeService{store: store, ttl: ttl, logger: logger}
}

func (s *noticeService) Push(ctx context.Context, userID, level, message string) (dto.Notice, bool) {
	n := dto.Notice{Level: level, Message: message}
	if s.store == nil || userID == "" {
		return n, false
	}
	if err := s.store.PushNotice(ctx, userID, redis.Notice{Level: level, Message: message}, s.ttl); err != nil {
		s.logger.Warn("写入提示消息失败", zap.String("user_id", userID), zap.Error(err))
		return n, false
	}
	return n, true
}

func (s *noticeService) Inline(ctx context.Context, userID, level, message string) []dto.Notice {
	n, stored := s.Push(ctx, userID, level, message)
	if stored {
		return []dto.Notice{}
	}
	return []dto.Notice{n}
}

func (s *noticeService) Pop(ctx context.Context, userID string) []dto.Notice {
	out := []dto.Notice{}
	if s.store == nil {
		return out
	}
	items, err := s.store.PopNotices(ctx, userID)
	if err != nil {
		s.logger.Warn("读取提示消息失败", zap.String("user_id", userID), zap.Error(err))
		return out
	}
	for _, n := range items {
		out = append(out, dto.Notice{Level: n.Level, Message: n.Message})
	}
	return out
}
