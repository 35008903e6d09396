package scheduler

// slot 表示某个 (day, shift) 中的一个岗位空缺
type slot struct {
	day        int
	shift      int
	role       string
	candidates []int // 可以胜任该岗位的员工下标
}

// Chromosome: 整个排班表，genes[i] 为第 i 个空缺安排的员工下标，-1 表示没有安排
type Chromosome struct {
	genes   []int
	fitness float64
}

func (c *Chromosome) clone() *Chromosome {
	genes := make([]int, len(c.genes))
	copy(genes, c.genes)
	return &Chromosome{genes: genes, fitness: c.fitness}
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量
	FairnessWeight float64 // 公平性权重
}

func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 60,
		MaxGenerations: 200,
		CrossoverRate:  0.8,
		MutationRate:   0.05,
		EliteCount:     2,
		FairnessWeight: 0.5,
	}
}
