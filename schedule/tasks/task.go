package tasks

import (
	"time"

	"token-backend/log"

	"github.com/jasonlvhit/gocron"
)

// Job is a scheduled function; it handles and logs its own errors.
type Job struct {
	Name            string
	IntervalMinutes uint64
	Run             func()
}

// Task 启动时先执行一次所有任务，之后按各自频率执行。
// 向返回的 channel 发送 true 停止调度。
func Task(jobs ...Job) chan bool {
	s := gocron.NewScheduler()
	s.ChangeLoc(time.UTC)

	for _, j := range jobs {
		if j.IntervalMinutes == 0 || j.Run == nil {
			log.Logger.Sugar().Warn("skip scheduled job ", j.Name)
			continue
		}
		j.Run()
		if err := s.Every(j.IntervalMinutes).Minutes().From(gocron.NextTick()).Do(j.Run); err != nil {
			log.Logger.Sugar().Error("schedule job ", j.Name, " err ", err)
			continue
		}
		log.Logger.Sugar().Infof("scheduled job %s every %d minutes", j.Name, j.IntervalMinutes)
	}
	return s.Start()
}

// 任务,				频率,		理由
// BalanceMonitor,	30 分钟,	mint 消耗 gas 不快，半小时检查一次服务钱包余额足够。
