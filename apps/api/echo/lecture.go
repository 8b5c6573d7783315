package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core/batch"
	"github.com/trezcool/academia/core/schedule"
)

type LectureTotal struct {
	Software      string                `json:"software"`
	TotalLectures int                   `json:"totalLectures"`
	Unrecognized  []schedule.Suggestion `json:"unrecognized"`
}

type lectureApi struct {
	svc batch.Service
}

func registerLectureAPI(g *echo.Group, svc batch.Service) {
	api := lectureApi{svc: svc}

	lg := g.Group("/lectures")
	lg.GET("", api.catalog)
	lg.GET("/total", api.total)
}

func (api *lectureApi) catalog(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Catalog().Entries())
}

func (api *lectureApi) total(ctx echo.Context) error {
	catalog := api.svc.Catalog()
	software := ctx.QueryParam("software")

	unknown := catalog.Unrecognized(software)
	if unknown == nil {
		unknown = []schedule.Suggestion{}
	}
	return ctx.JSON(http.StatusOK, LectureTotal{
		Software:      software,
		TotalLectures: catalog.TotalLectures(software),
		Unrecognized:  unknown,
	})
}
