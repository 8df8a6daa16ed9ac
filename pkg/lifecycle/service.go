// Package lifecycle 管理 HTTP 服务的启动、信号处理与优雅关闭
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sysauth/pkg/logger"
	"go.uber.org/zap"
)

// Hook 生命周期钩子
type Hook func() error

// Service 服务包装器
type Service struct {
	name            string
	addr            string
	app             *fiber.App
	shutdownTimeout time.Duration
	onReady         []Hook
	onStop          []Hook
}

// New 创建服务
func New(name string) *Service {
	return &Service{
		name:            name,
		shutdownTimeout: 10 * time.Second,
	}
}

// Addr 设置监听地址
func (s *Service) Addr(addr string) *Service {
	s.addr = addr
	return s
}

// App 设置Fiber应用
func (s *Service) App(app *fiber.App) *Service {
	s.app = app
	return s
}

// ShutdownTimeout 设置关闭超时
func (s *Service) ShutdownTimeout(d time.Duration) *Service {
	s.shutdownTimeout = d
	return s
}

// OnReady 添加就绪钩子,在开始监听后执行
func (s *Service) OnReady(fn Hook) *Service {
	s.onReady = append(s.onReady, fn)
	return s
}

// OnStop 添加停止钩子,在HTTP服务关闭后按注册逆序执行
func (s *Service) OnStop(fn Hook) *Service {
	s.onStop = append(s.onStop, fn)
	return s
}

// Run 运行服务直到收到 SIGINT/SIGTERM
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.RunContext(ctx)
}

// RunContext 运行服务直到 ctx 结束或监听失败
func (s *Service) RunContext(ctx context.Context) error {
	if s.app == nil {
		return errors.New("lifecycle: app is not set")
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", zap.String("service", s.name), zap.String("address", s.addr))
		errCh <- s.app.Listen(s.addr)
	}()

	for _, fn := range s.onReady {
		if err := fn(); err != nil {
			s.shutdown()
			return fmt.Errorf("ready hook: %w", err)
		}
	}

	select {
	case <-ctx.Done():
		logger.Info("收到退出信号，正在关闭服务...", zap.String("service", s.name))
	case err := <-errCh:
		s.runStopHooks()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	return s.shutdown()
}

func (s *Service) shutdown() error {
	err := s.app.ShutdownWithTimeout(s.shutdownTimeout)
	if err != nil {
		logger.Error("关闭HTTP服务失败", zap.Error(err))
	}
	s.runStopHooks()
	logger.Info("服务已停止", zap.String("service", s.name))
	return err
}

func (s *Service) runStopHooks() {
	for i := len(s.onStop) - 1; i >= 0; i-- {
		if err := s.onStop[i](); err != nil {
			logger.Error("停止钩子执行失败", zap.Error(err))
		}
	}
}
