package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

const (
	pathSettings  = "manager-settings/"
	pathEmployees = "user/employees"
	pathSchedules = "schedule/all"
	pathPublish   = "schedule/add"
	pathUpdate    = "schedule/update"
	pathGenerate  = "csp/generate-schedule"
)

// Client 负责和排班后端同步，所有请求都不会自动重试
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	validate   *validator.Validate
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
	}
}

// WithToken 返回一个会在每个请求中携带该会话令牌的 Client
func (c *Client) WithToken(token string) *Client {
	cc := *c
	cc.token = token
	return &cc
}

type daysPayload struct {
	Days []domain.Day `json:"days"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type Candidate struct {
	Days []domain.Day
	Text []string
}

func (c *Client) FetchSettings(ctx context.Context) (*domain.ManagerSettings, error) {
	settings := &domain.ManagerSettings{}
	if err := c.do(ctx, "获取经理设置", http.MethodGet, pathSettings, nil, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// FetchEmployees 获取员工名单，不合法的记录会被跳过
func (c *Client) FetchEmployees(ctx context.Context) ([]domain.Employee, error) {
	var raw []domain.Employee
	if err := c.do(ctx, "获取员工名单", http.MethodGet, pathEmployees, nil, &raw); err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(raw))
	for i, emp := range raw {
		if err := c.validate.Struct(emp); err != nil {
			slog.Warn("跳过不合法的员工记录", "index", i, "error", err)
			continue
		}
		if emp.ID == "" {
			emp.ID = uuid.NewString()
		}
		if emp.Jobs == nil {
			emp.Jobs = make([]string, 0)
		}
		employees = append(employees, emp)
	}

	return employees, nil
}

// FetchSchedules 获取所有已发布的班表，按照创建时间从新到旧排列
func (c *Client) FetchSchedules(ctx context.Context) ([]*domain.Schedule, error) {
	var schedules []*domain.Schedule
	if err := c.do(ctx, "获取班表列表", http.MethodGet, pathSchedules, nil, &schedules); err != nil {
		return nil, err
	}

	schedules = slices.DeleteFunc(schedules, func(s *domain.Schedule) bool { return s == nil })
	slices.SortStableFunc(schedules, func(a, b *domain.Schedule) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	for i, s := range schedules {
		s.VersionIndex = i
	}

	return schedules, nil
}

// Publish 使用完整的 Day 树在服务端创建一个新的班表
func (c *Client) Publish(ctx context.Context, days []domain.Day) (string, error) {
	var resp struct {
		ID string `json:"_id"`
	}
	if err := c.do(ctx, "发布班表", http.MethodPost, pathPublish, daysPayload{Days: days}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Update 使用完整的 Day 树覆盖服务端班表，而不是发送差异
func (c *Client) Update(ctx context.Context, scheduleID string, days []domain.Day) error {
	if scheduleID == "" {
		return &NetworkFailure{Op: "更新班表", Err: errors.New("班表 id 为空")}
	}
	return c.do(ctx, "更新班表", http.MethodPut, pathUpdate+"/"+scheduleID, daysPayload{Days: days}, nil)
}

// Generate 调用外部的自动排班服务，服务端返回 400 时返回 *ServerRejection
func (c *Client) Generate(ctx context.Context) (*Candidate, error) {
	var resp struct {
		Solution string   `json:"solution"`
		Text     []string `json:"text"`
	}
	if err := c.do(ctx, "自动排班", http.MethodGet, pathGenerate, nil, &resp); err != nil {
		return nil, err
	}

	candidate := &Candidate{Text: resp.Text}
	if err := json.Unmarshal([]byte(resp.Solution), &candidate.Days); err != nil {
		return nil, &NetworkFailure{Op: "自动排班", Status: http.StatusOK, Err: fmt.Errorf("无法解析排班结果: %w", err)}
	}

	return candidate, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, body, dst any) error {
	endpoint, err := url.JoinPath(c.baseURL, path)
	if err != nil {
		return &NetworkFailure{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &NetworkFailure{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &NetworkFailure{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkFailure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var payload errorPayload
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if path == pathGenerate && resp.StatusCode == http.StatusBadRequest {
			return &ServerRejection{Status: resp.StatusCode, Message: payload.Error}
		}
		return &NetworkFailure{Op: op, Status: resp.StatusCode, Message: payload.Error}
	}

	if dst == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return &NetworkFailure{Op: op, Status: resp.StatusCode, Err: err}
	}

	return nil
}
