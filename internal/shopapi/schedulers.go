package shopapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/minimall/minimall/internal/domain"
	"github.com/minimall/minimall/internal/webserver"
	"gorm.io/gorm"
)

func registerSchedulerRoutes() {
	webserver.ApiGET("/admin/schedulers", listSchedulers)
	webserver.ApiPOST("/admin/schedulers/:id/run", runSchedulerNow)
}

func listSchedulers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.ShopScheduler{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query schedulers", err.Error())
	}

	var schedulers []domain.ShopScheduler
	if err := base.Order("id ASC").Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&schedulers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query schedulers", err.Error())
	}
	return paged(c, schedulers, total, page, pageSize)
}

func runSchedulerNow(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid scheduler ID", nil)
	}
	if err := webserver.GetApp(c).RunSchedulerNow(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Scheduler not found", nil)
		}
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to run scheduler", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
