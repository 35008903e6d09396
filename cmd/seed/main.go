package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/roster-board/internal/config"
	"github.com/sysu-ecnc-dev/roster-board/internal/repository"
	"github.com/sysu-ecnc-dev/roster-board/internal/seed"
	"github.com/sysu-ecnc-dev/roster-board/internal/session"
	"github.com/sysu-ecnc-dev/roster-board/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var subject string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 写入演示经理设置, 2: 插入随机员工, 3: 从 CSV 导入员工, 4: 插入空白班表, 5: 签发经理令牌)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "./employees.csv", "员工名单 CSV 文件")
	flag.StringVar(&subject, "subject", "manager", "签发令牌时使用的用户标识")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 签发令牌不需要连接数据库
	if op == 5 {
		token, err := session.Issue(subject, session.RoleManager, []byte(cfg.JWT.Secret), time.Duration(cfg.JWT.Expiration)*time.Second)
		if err != nil {
			logger.Error("无法签发令牌", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("签发令牌成功", "subject", subject, "token", token)
		return
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if err := repo.SaveManagerSettings(seed.DemoSettings()); err != nil {
			slog.Error("无法写入经理设置", slog.String("error", err.Error()))
			return
		}
		slog.Info("写入经理设置成功")
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		jobs := seed.DemoJobs(seed.DemoSettings())
		cnt := 0
		for i := 0; i < n; i++ {
			emp := utils.GenerateRandomEmployee(jobs)
			if err := repo.CreateEmployee(emp); err != nil {
				slog.Error("无法插入员工", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("插入员工成功", slog.Int("count", cnt))
	case 3:
		cnt, err := seed.SeedEmployeesFromCSV(repo, file)
		if err != nil {
			slog.Error("无法导入员工", slog.String("file", file), slog.String("error", err.Error()))
			return
		}
		slog.Info("导入员工成功", slog.Int("count", cnt))
	case 4:
		settings, err := repo.GetManagerSettings()
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("经理设置不存在，请先执行 -op 1")
			default:
				slog.Error("无法获取经理设置", slog.String("error", err.Error()))
			}
			return
		}

		s, err := seed.SeedScaffold(repo, settings)
		if err != nil {
			slog.Error("无法插入空白班表", slog.String("error", err.Error()))
			return
		}
		slog.Info("插入空白班表成功", slog.String("id", s.ID))
	default:
		slog.Error("指定的操作非法")
	}
}
