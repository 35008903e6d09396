// Package web 是班表存储和排班板服务共用的 HTTP 工具：JSON 读写、校验器、日志、panic 恢复和会话认证。
// 两个服务的响应格式不同，因此错误响应由调用方通过 ErrorFunc 写出
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
)

// ErrorFunc 按照服务自己的响应格式写出一个错误
type ErrorFunc func(w http.ResponseWriter, r *http.Request, status int, msg string)

func NewValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, err
	}
	return validate, trans, nil
}

func ReadJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}

// Message 返回适合展示给用户的错误信息，校验错误只取第一条并翻译
func Message(err error, trans ut.Translator) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Translate(trans)
	}
	return err.Error()
}

func LogInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("已处理请求",
			"request_id", middleware.GetReqID(r.Context()),
			"status", ww.Status(),
			"ip", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

// Recoverer 把 panic 转换成 500 响应
func Recoverer(fail ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					LogInternalServerError(r, fmt.Errorf("panic: %v", err))
					fail(w, r, http.StatusInternalServerError, "服务器内部错误")
					fmt.Print(string(debug.Stack())) // 这里如果用 slog 的话会很乱
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Auth 解析请求中的会话令牌并放入 context
func Auth(secret []byte, fail ErrorFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.TokenFromRequest(r)
			if token == "" {
				fail(w, r, http.StatusUnauthorized, "用户未登录")
				return
			}

			s, err := session.Parse(token, secret)
			if err != nil {
				fail(w, r, http.StatusUnauthorized, "无效的令牌")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), s)))
		})
	}
}
