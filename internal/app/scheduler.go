package app

import (
	"context"
	"time"

	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/pkg/metrics"
	"go.uber.org/zap"
)

// StartSchedulerService runs enabled schedulers periodically
func (a *Application) StartSchedulerService(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.runSchedulers()
			}
		}
	}()
}

// runSchedulers executes enabled schedulers whose next run time has passed
func (a *Application) runSchedulers() {
	var schedulers []domain.ShopScheduler
	a.gormDB.Where("status = ?", "enabled").Find(&schedulers)
	now := time.Now()
	for _, sched := range schedulers {
		if sched.NextRunAt.IsZero() || !now.Before(sched.NextRunAt) {
			a.dispatchScheduler(&sched)
			a.gormDB.Model(&domain.ShopScheduler{}).
				Where("id = ?", sched.ID).
				Update("next_run_at", now.Add(time.Duration(sched.Interval)*time.Second))
		}
	}
}

func (a *Application) dispatchScheduler(sched *domain.ShopScheduler) {
	switch sched.TaskType {
	case "cart_abandon":
		a.runCartAbandonScheduler(sched)
	case "stock_report":
		a.runStockReportScheduler(sched)
	default:
		// unsupported task type
	}
}

// RunSchedulerNow triggers a scheduler execution immediately by ID
func (a *Application) RunSchedulerNow(id int64) error {
	var sched domain.ShopScheduler
	if err := a.gormDB.First(&sched, id).Error; err != nil {
		return err
	}

	a.dispatchScheduler(&sched)

	now := time.Now()
	a.gormDB.Model(&domain.ShopScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at": now,
		"next_run_at": now.Add(time.Duration(sched.Interval) * time.Second),
	})
	return nil
}

// runCartAbandonScheduler marks active carts idle beyond the configured
// window as abandoned. This is the abandonment policy living outside the
// engine: it only ever applies the one legal active -> abandoned transition.
func (a *Application) runCartAbandonScheduler(sched *domain.ShopScheduler) {
	days := a.GetSettingsInt64Value("shop", "CartAbandonDays")
	if days <= 0 {
		days = 7
	}
	cutoff := time.Now().Add(-time.Hour * 24 * time.Duration(days))

	res := a.gormDB.Model(&domain.Cart{}).
		Where("status = ? and updated_at < ?", domain.CartStatusActive, cutoff).
		Updates(map[string]interface{}{
			"status":     domain.CartStatusAbandoned,
			"active_key": nil,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		a.finishScheduler(sched, "failed", res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		zap.L().Info("abandoned stale carts", zap.Int64("count", res.RowsAffected))
	}
	metrics.IncrCounter("shop_carts_abandoned", res.RowsAffected)
	a.finishScheduler(sched, "success", "stale carts abandoned")
}

// runStockReportScheduler publishes catalog stock gauges
func (a *Application) runStockReportScheduler(sched *domain.ShopScheduler) {
	threshold := a.GetSettingsInt64Value("shop", "LowStockThreshold")
	if threshold <= 0 {
		threshold = 5
	}

	var productCount, lowStock int64
	var totalStock int64
	a.gormDB.Model(&domain.Product{}).Count(&productCount)
	a.gormDB.Model(&domain.Product{}).Where("stock <= ?", threshold).Count(&lowStock)
	a.gormDB.Model(&domain.Product{}).Select("coalesce(sum(stock), 0)").Scan(&totalStock)

	metrics.SetGauge("shop_products_total", productCount)
	metrics.SetGauge("shop_products_low_stock", lowStock)
	metrics.SetGauge("shop_stock_total", totalStock)

	a.finishScheduler(sched, "success", "stock gauges published")
}

func (a *Application) finishScheduler(sched *domain.ShopScheduler, result, message string) {
	a.gormDB.Model(&domain.ShopScheduler{}).Where("id = ?", sched.ID).Updates(map[string]interface{}{
		"last_run_at":  time.Now(),
		"last_result":  result,
		"last_message": message,
	})
}
