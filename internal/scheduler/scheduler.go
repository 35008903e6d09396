package scheduler

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
	"github.com/sysu-ecnc-dev/roster-board/internal/schedule"
)

// InfeasibleError 表示某个岗位没有任何员工可以胜任，自动排班无法进行
type InfeasibleError struct {
	Day   string
	Shift string
	Role  string
}

func (e *InfeasibleError) Error() string {
	if e.Role == "" {
		return "No employees available to schedule"
	}
	return fmt.Sprintf("Not enough employees qualified as %s for %s %s", e.Role, e.Day, e.Shift)
}

// Result 是一次自动排班的结果，Text 是给经理看的说明
type Result struct {
	Days []domain.Day
	Text []string
}

type Scheduler struct {
	parameters *Parameters
	settings   *domain.ManagerSettings
	employees  []*domain.Employee
	skeleton   []domain.Day
	slots      []slot
	groups     [][]int // 同一个 (day, shift) 中的空缺下标
	qualified  []int   // 至少能胜任一个空缺的员工下标
	rng        *rand.Rand
}

type Option func(*Scheduler)

// WithSeed 固定随机数种子，用于测试
func WithSeed(seed int64) Option {
	return func(s *Scheduler) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

func New(parameters *Parameters, settings *domain.ManagerSettings, employees []*domain.Employee, opts ...Option) (*Scheduler, error) {
	if parameters == nil {
		parameters = DefaultParameters()
	}
	if settings == nil {
		settings = &domain.ManagerSettings{}
	}

	s := &Scheduler{
		parameters: parameters,
		settings:   settings,
		employees:  employees,
		skeleton:   schedule.NewScaffold(settings).Days,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(employees) == 0 {
		return nil, &InfeasibleError{}
	}

	qualified := make(map[int]bool)
	for d, day := range s.skeleton {
		for sh, shift := range day.Shifts {
			roles := settings.RolesPerShift[shift.Time]
			names := make([]string, 0, len(roles))
			for role := range roles {
				names = append(names, role)
			}
			sort.Strings(names)

			group := make([]int, 0)
			for _, role := range names {
				candidates := make([]int, 0)
				for i, emp := range employees {
					if slices.Contains(emp.Jobs, role) {
						candidates = append(candidates, i)
						qualified[i] = true
					}
				}
				if len(candidates) == 0 && roles[role] > 0 {
					return nil, &InfeasibleError{Day: day.Name, Shift: shift.Time, Role: role}
				}

				for n := 0; n < roles[role]; n++ {
					group = append(group, len(s.slots))
					s.slots = append(s.slots, slot{day: d, shift: sh, role: role, candidates: candidates})
				}
			}
			s.groups = append(s.groups, group)
		}
	}

	for i := range employees {
		if qualified[i] {
			s.qualified = append(s.qualified, i)
		}
	}

	return s, nil
}

func (s *Scheduler) Schedule() *Result {
	size := max(int(s.parameters.PopulationSize), 2)
	elite := min(int(s.parameters.EliteCount), size)

	// 生成初始种群
	pop := make([]*Chromosome, size)
	for i := range pop {
		pop[i] = s.randomInitChromosome()
		s.calcFitness(pop[i])
	}

	best := &Chromosome{fitness: -math.MaxFloat64}

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		if pop[0].fitness > best.fitness {
			best = pop[0].clone()
		}

		// 保留精英
		newPop := make([]*Chromosome, 0, size)
		for _, ch := range pop[:elite] {
			newPop = append(newPop, ch.clone())
		}

		// 在剩余的位置中进行交叉和变异
		for len(newPop) < size {
			p1 := s.selectByRoulette(pop)
			p2 := s.selectByRoulette(pop)

			if s.rng.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)
			if len(newPop) < size {
				newPop = append(newPop, p2)
			}
		}

		for _, ch := range newPop {
			s.calcFitness(ch)
		}
		pop = newPop
	}

	for _, ch := range pop {
		if ch.fitness > best.fitness {
			best = ch.clone()
		}
	}

	return s.result(best)
}

// result 把染色体转换成 Day 树，同一个班次中重复出现的员工只保留第一次
func (s *Scheduler) result(best *Chromosome) *Result {
	days := domain.CloneDays(s.skeleton)
	filled := 0
	missing := make([]string, 0)

	for _, group := range s.groups {
		seen := make(map[int]bool)
		for _, i := range group {
			sl := s.slots[i]
			day := &days[sl.day]
			shift := &day.Shifts[sl.shift]

			e := best.genes[i]
			if e < 0 || seen[e] {
				missing = append(missing, fmt.Sprintf("%s %s 缺少 %s", day.Name, shift.Time, sl.role))
				continue
			}
			seen[e] = true
			filled++

			shift.Assignments = append(shift.Assignments, domain.Assignment{
				ID:       uuid.NewString(),
				Employee: s.employees[e].FullName(),
				Role:     sl.role,
			})
		}
	}

	text := []string{fmt.Sprintf("共 %d 个岗位，已安排 %d 个", len(s.slots), filled)}
	text = append(text, missing...)

	for _, day := range days {
		for _, shift := range day.Shifts {
			r, ok := s.settings.MinMaxEmployeesPerShift[shift.Time]
			if !ok {
				continue
			}
			n := len(shift.Assignments)
			if n < r.Min {
				text = append(text, fmt.Sprintf("%s %s 人数 %d 少于最少人数 %d", day.Name, shift.Time, n, r.Min))
			}
			if r.Max > 0 && n > r.Max {
				text = append(text, fmt.Sprintf("%s %s 人数 %d 多于最多人数 %d", day.Name, shift.Time, n, r.Max))
			}
		}
	}

	return &Result{Days: days, Text: text}
}
