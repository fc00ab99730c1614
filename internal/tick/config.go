package tick

import (
	"time"

	"Hegemony/internal/shared/serverconfig"
)

const (
	defaultArmyEvery         = 5 * time.Second
	defaultConstructionEvery = 10 * time.Second
	defaultAccrualEvery      = 5 * time.Minute
	defaultStarvationEvery   = 5 * time.Minute
	defaultReportEvery       = 5 * time.Second
	defaultBatchSize         = 100
	// maxBatchesPerPass 单轮最多连续认领的批次数，剩下的交给下一轮。
	maxBatchesPerPass = 20
)

// Config 各循环节拍。为 0 的取默认值。
type Config struct {
	ArmyEvery         time.Duration
	ConstructionEvery time.Duration
	AccrualEvery      time.Duration
	StarvationEvery   time.Duration
	ReportEvery       time.Duration
	BatchSize         int
}

func ConfigFrom(c serverconfig.SchedulerConfig) Config {
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return Config{
		ArmyEvery:         sec(c.ArmyEverySec),
		ConstructionEvery: sec(c.ConstructionEverySec),
		AccrualEvery:      sec(c.AccrualEverySec),
		StarvationEvery:   sec(c.StarvationEverySec),
		ReportEvery:       sec(c.ReportEverySec),
		BatchSize:         c.BatchSize,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	pick := func(v, d time.Duration) time.Duration {
		if v <= 0 {
			return d
		}
		return v
	}
	c.ArmyEvery = pick(c.ArmyEvery, defaultArmyEvery)
	c.ConstructionEvery = pick(c.ConstructionEvery, defaultConstructionEvery)
	c.AccrualEvery = pick(c.AccrualEvery, defaultAccrualEvery)
	c.StarvationEvery = pick(c.StarvationEvery, defaultStarvationEvery)
	c.ReportEvery = pick(c.ReportEvery, defaultReportEvery)
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	return c
}

func (c Config) every(l Loop) time.Duration {
	switch l {
	case LoopArmy:
		return c.ArmyEvery
	case LoopConstruction:
		return c.ConstructionEvery
	case LoopAccrual:
		return c.AccrualEvery
	case LoopStarvation:
		return c.StarvationEvery
	case LoopReport:
		return c.ReportEvery
	}
	return 0
}
