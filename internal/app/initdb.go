package app

import (
	"time"

	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/pkg/common"
	"go.uber.org/zap"
)

type configDefault struct {
	Type   string
	Name   string
	Value  string
	Remark string
}

var defaultConfigs = []configDefault{
	{"shop", "CartAbandonDays", "7", "Active carts idle longer than this many days are marked abandoned"},
	{"shop", "LowStockThreshold", "5", "Products at or below this stock count as low-stock in reports"},
	{"shop", "OrderHistoryDays", "365", "Terminal carts older than this many days are purged"},
	{"scheduler", "MaxWorkers", "50", "Upper bound for concurrent scheduler workers"},
}

// checkSettings initializes missing sys_config entries with defaults.
func (a *Application) checkSettings() {
	for sortid, item := range defaultConfigs {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", item.Type, item.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   item.Type,
				Name:   item.Name,
				Value:  item.Value,
				Remark: item.Remark,
			})
			zap.L().Info("initialized config",
				zap.String("key", item.Type+"."+item.Name),
				zap.String("default", item.Value))
		}
	}
}

// checkSchedulers initializes default scheduled tasks
func (a *Application) checkSchedulers() {
	defaultSchedulers := []domain.ShopScheduler{
		{
			Name:     "Cart Abandon Sweep",
			TaskType: "cart_abandon",
			Interval: 3600, // 1 hour
			Status:   common.ENABLED,
			Remark:   "Marks active carts idle beyond the configured window as abandoned",
		},
		{
			Name:     "Stock Report",
			TaskType: "stock_report",
			Interval: 300, // 5 minutes
			Status:   common.ENABLED,
			Remark:   "Publishes catalog stock gauges to metrics storage",
		},
	}

	for _, sched := range defaultSchedulers {
		var count int64
		a.gormDB.Model(&domain.ShopScheduler{}).
			Where("task_type = ?", sched.TaskType).
			Count(&count)

		if count == 0 {
			sched.ID = common.UUIDint64()
			sched.NextRunAt = time.Now().Add(time.Duration(sched.Interval) * time.Second)
			if err := a.gormDB.Create(&sched).Error; err != nil {
				zap.L().Error("failed to create default scheduler",
					zap.String("name", sched.Name),
					zap.Error(err))
			} else {
				zap.L().Info("initialized default scheduler",
					zap.String("name", sched.Name),
					zap.String("task_type", sched.TaskType))
			}
		}
	}
}

// checkProducts seeds the demo catalog
func (a *Application) checkProducts() {
	defaultProducts := []domain.Product{
		{Name: "canvas low-top sneaker", Category: "shoes", Price: 4599, Stock: 120},
		{Name: "trail running shoe", Category: "shoes", Price: 8999, Stock: 60},
		{Name: "leather derby", Category: "shoes", Price: 12900, Stock: 25},
		{Name: "organic cotton tee", Category: "shirts", Price: 1999, Stock: 200},
		{Name: "oxford button-down", Category: "shirts", Price: 4950, Stock: 80},
		{Name: "merino crewneck", Category: "shirts", Price: 7400, Stock: 40},
		{Name: "woven leather belt", Category: "accessories", Price: 3500, Stock: 90},
		{Name: "canvas tote bag", Category: "accessories", Price: 2850, Stock: 150},
		{Name: "field watch", Category: "accessories", Price: 15900, Stock: 10},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.ID = common.UUIDint64()
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}
