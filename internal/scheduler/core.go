package scheduler

import (
	"math"
)

// randomInitChromosome 随机初始化一个染色体，同一个班次中不会出现重复的员工
func (s *Scheduler) randomInitChromosome() *Chromosome {
	genes := make([]int, len(s.slots))
	for i := range genes {
		genes[i] = -1
	}

	for _, group := range s.groups {
		used := make(map[int]bool)
		for _, i := range group {
			genes[i] = s.pick(s.slots[i].candidates, used)
			if genes[i] >= 0 {
				used[genes[i]] = true
			}
		}
	}

	return &Chromosome{genes: genes}
}

// pick 从候选中随机选择一个没有被使用过的员工，没有可选的员工时返回 -1
func (s *Scheduler) pick(candidates []int, used map[int]bool) int {
	free := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if !used[c] {
			free = append(free, c)
		}
	}
	if len(free) == 0 {
		return -1
	}
	return free[s.rng.Intn(len(free))]
}

/**
 * 计算染色体的适应度
 * fitness = - unfilledPenalty - conflictPenalty - notWorkPenalty - FairnessWeight * fairnessPenalty
 * 其中:
 * 		1. unfilledPenalty 为没有安排员工的岗位数量
 * 		2. conflictPenalty 为同一个班次中重复安排同一个员工的次数，交叉之后可能出现
 * 		3. notWorkPenalty 为可以工作却没有被安排的员工数量
 * 		4. fairnessPenalty 为每个员工排班次数的方差
 */
func (s *Scheduler) calcFitness(ch *Chromosome) {
	workCnt := make([]float64, len(s.employees))

	unfilled := 0.0
	conflicts := 0.0
	for _, group := range s.groups {
		seen := make(map[int]bool)
		for _, i := range group {
			e := ch.genes[i]
			if e < 0 {
				unfilled++
				continue
			}
			if seen[e] {
				conflicts++
			}
			seen[e] = true
			workCnt[e]++
		}
	}

	notWork := 0.0
	avg := 0.0
	for _, e := range s.qualified {
		if workCnt[e] == 0 {
			notWork++
		}
		avg += workCnt[e]
	}

	variance := 0.0
	if len(s.qualified) > 0 {
		avg /= float64(len(s.qualified))
		for _, e := range s.qualified {
			variance += math.Pow(workCnt[e]-avg, 2)
		}
		variance /= float64(len(s.qualified))
	}

	ch.fitness = -10*unfilled - 100*conflicts - notWork - s.parameters.FairnessWeight*variance
}

// 使用轮盘赌来进行选择。适应度都是非正数，先平移到正数区间
func (s *Scheduler) selectByRoulette(pop []*Chromosome) *Chromosome {
	minFit := pop[0].fitness
	for _, ch := range pop {
		minFit = min(minFit, ch.fitness)
	}

	sumFit := 0.0
	for _, ch := range pop {
		sumFit += ch.fitness - minFit + 1
	}
	pick := s.rng.Float64() * sumFit
	partial := 0.0

	for _, ch := range pop {
		partial += ch.fitness - minFit + 1
		if partial >= pick {
			return ch.clone()
		}
	}

	return pop[len(pop)-1].clone()
}

// 单点交叉
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	length := len(ch1.genes)
	if length == 0 || length != len(ch2.genes) {
		return
	}

	point := s.rng.Intn(length)
	for i := point; i < length; i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异：以一定概率为某个岗位重新选择员工
func (s *Scheduler) mutate(ch *Chromosome) {
	for _, group := range s.groups {
		for _, i := range group {
			if s.rng.Float64() > s.parameters.MutationRate {
				continue
			}

			used := make(map[int]bool)
			for _, j := range group {
				if j != i && ch.genes[j] >= 0 {
					used[ch.genes[j]] = true
				}
			}
			if e := s.pick(s.slots[i].candidates, used); e >= 0 {
				ch.genes[i] = e
			}
		}
	}
}
