package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
)

// DashboardOverviewUseCase assembles the consolidated dashboard payload by
// fanning out the pipeline sections concurrently.
type DashboardOverviewUseCase struct {
	agg     *DashboardAggregator
	timeout time.Duration
}

func NewDashboardOverviewUseCase(agg *DashboardAggregator) *DashboardOverviewUseCase {
	return &DashboardOverviewUseCase{agg: agg, timeout: 10 * time.Second}
}

type GetOverviewParams struct {
	UserID      string
	Days        int
	Granularity domrepo.Granularity
	Now         time.Time
}

func (uc *DashboardOverviewUseCase) GetOverview(ctx context.Context, p GetOverviewParams) (*models.DashboardOverview, error) {
	if p.UserID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if p.Days <= 0 {
		p.Days = 90
	}
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.DashboardOverview{
		UserID:    p.UserID,
		Timestamp: p.Now,
		Errors:    map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 4)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.WeeklySummary(ctx, p.UserID, p.Days, p.Now)
		ch <- item{"summary", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.TimeOfDay(ctx, p.UserID, p.Days, p.Granularity, p.Now)
		ch <- item{"time_of_day", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.ForecastView(ctx, p.UserID, 48, p.Now)
		ch <- item{"forecast", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.agg.Alert(ctx, p.UserID, 2)
		ch <- item{"alert", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "summary":
			v := it.val.(models.WeeklySummary)
			res.Summary = &v
		case "time_of_day":
			res.TimeOfDay = it.val.([]models.TimeOfDayRow)
		case "forecast":
			v := it.val.(models.ForecastView)
			res.Forecast = &v
		case "alert":
			res.Alert = it.val.(*models.Alert)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
