package utils

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/roster-board/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
}

// GenerateRandomEmployee 生成一个随机的员工，jobs 为可以胜任的岗位的候选集合
func GenerateRandomEmployee(jobs []string) *domain.Employee {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}

	emp := &domain.Employee{
		FirstName: name,
		LastName:  surname,
		Jobs:      make([]string, 0),
	}
	if len(jobs) > 0 {
		emp.Jobs = GenerateRandomSubset(jobs)
	}

	return emp
}

// 使用 Fisher-Yates 洗牌算法来生成一个非空的随机子集
func GenerateRandomSubset[T any](arr []T) []T {
	arrCopy := append([]T{}, arr...) // 复制数组，避免修改原数组

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}
