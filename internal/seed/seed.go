package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/schedule"
)

// Store 是种子数据写入的目标，*repository.Repository 实现了这个接口
type Store interface {
	SaveManagerSettings(settings *domain.ManagerSettings) error
	CreateEmployee(emp *domain.Employee) error
	CreateSchedule(s *domain.Schedule) error
}

// DemoSettings 返回一份演示用的经理设置
func DemoSettings() *domain.ManagerSettings {
	return &domain.ManagerSettings{
		WorkDays:   []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		ShiftNames: []string{"Morning", "Afternoon", "Evening"},
		ShiftColors: map[string]string{
			"Morning":   "#AEDFF7",
			"Afternoon": "#FFE4B5",
			"Evening":   "#D8BFD8",
		},
		RolesPerShift: map[string]map[string]int{
			"Morning":   {"Cook": 1, "Server": 2},
			"Afternoon": {"Cook": 1, "Server": 1},
			"Evening":   {"Cook": 2, "Server": 2, "Host": 1},
		},
		MinMaxEmployeesPerShift: map[string]domain.EmployeeRange{
			"Morning":   {Min: 2, Max: 4},
			"Afternoon": {Min: 2, Max: 3},
			"Evening":   {Min: 3, Max: 6},
		},
	}
}

// DemoJobs 是演示设置中出现的所有岗位
func DemoJobs(settings *domain.ManagerSettings) []string {
	jobs := make([]string, 0)
	for _, shift := range settings.ShiftNames {
		for role := range settings.RolesPerShift[shift] {
			if !slices.Contains(jobs, role) {
				jobs = append(jobs, role)
			}
		}
	}
	slices.Sort(jobs)
	return jobs
}

var requiredHeaders = []string{"first_name", "last_name", "jobs"}

// ReadEmployeesCSV 读取员工名单，jobs 列中的多个岗位用 ; 分隔。不合法的行会被跳过
func ReadEmployeesCSV(r io.Reader) ([]*domain.Employee, error) {
	reader := csv.NewReader(r)

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("没有找到 %s 列", h)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	employees := make([]*domain.Employee, 0)

	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		record := make(map[string]string)
		for i, value := range row {
			if i < len(headers) {
				record[headers[i]] = strings.TrimSpace(value)
			}
		}

		emp := &domain.Employee{
			FirstName: record["first_name"],
			LastName:  record["last_name"],
			Jobs:      make([]string, 0),
		}
		for _, job := range strings.Split(record["jobs"], ";") {
			if job = strings.TrimSpace(job); job != "" {
				emp.Jobs = append(emp.Jobs, job)
			}
		}

		if err := validate.Struct(emp); err != nil {
			slog.Warn("跳过不合法的员工记录", "line", line, "error", err)
			continue
		}

		employees = append(employees, emp)
	}

	return employees, nil
}

// SeedEmployeesFromCSV 把文件中的员工插入数据库，返回成功插入的数量
func SeedEmployeesFromCSV(s Store, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	employees, err := ReadEmployeesCSV(file)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, emp := range employees {
		if err := s.CreateEmployee(emp); err != nil {
			slog.Error("插入员工失败", "name", emp.FullName(), "error", err)
			continue
		}
		cnt++
	}

	return cnt, nil
}

// SeedScaffold 根据经理设置插入一张空白班表
func SeedScaffold(s Store, settings *domain.ManagerSettings) (*domain.Schedule, error) {
	m := schedule.New(settings)
	scaffold := m.HydrateScaffold()
	scaffold.ID = ""

	if err := s.CreateSchedule(scaffold); err != nil {
		return nil, err
	}
	return scaffold, nil
}
