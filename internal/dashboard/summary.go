// Package dashboard assembles the landing page from the sales and watch-tower
// services, returning whatever sections succeed.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/filters"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/sales"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/internal/watchtower"
	pkgerrors "github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/errors"
	"github.com/Anirudh140392/powerbi-dashboard-fullstack-sub006/pkg/logger"
)

// Section names used in Summary.Errors.
const (
	SectionSales      = "sales"
	SectionWatchtower = "watchtower"
)

// SectionError describes why one section is missing.
type SectionError struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

// Summary is the landing payload. A failed section is null and listed in Errors.
type Summary struct {
	Sales      *sales.Overview         `json:"sales"`
	Watchtower *watchtower.Overview    `json:"watchtower"`
	Errors     map[string]SectionError `json:"errors"`
}

// Service builds the dashboard summary.
type Service struct {
	sales      sales.Service
	watchtower watchtower.Service
	logg       *logger.Logger
}

func NewService(salesSvc sales.Service, watchtowerSvc watchtower.Service, logg *logger.Logger) (*Service, error) {
	if salesSvc == nil || watchtowerSvc == nil {
		return nil, fmt.Errorf("sales and watchtower services required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{sales: salesSvc, watchtower: watchtowerSvc, logg: logg}, nil
}

// Summary fetches both overviews concurrently. It only fails when both fail.
func (s *Service) Summary(ctx context.Context, f filters.FilterSet) (*Summary, error) {
	out := &Summary{Errors: map[string]SectionError{}}
	var (
		wg                 sync.WaitGroup
		salesErr, towerErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		out.Sales, salesErr = s.sales.Overview(ctx, f)
	}()
	go func() {
		defer wg.Done()
		out.Watchtower, towerErr = s.watchtower.Overview(ctx, f)
	}()
	wg.Wait()

	s.record(ctx, out, SectionSales, salesErr)
	s.record(ctx, out, SectionWatchtower, towerErr)
	if salesErr != nil && towerErr != nil {
		return nil, salesErr
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, out *Summary, section string, err error) {
	if err == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	out.Errors[section] = SectionError{Code: code, Message: pkgerrors.MetadataFor(code).PublicMessage}
	s.logg.Error(s.logg.WithField(ctx, "section", section), "dashboard section failed", err)
	switch section {
	case SectionSales:
		out.Sales = nil
	case SectionWatchtower:
		out.Watchtower = nil
	}
}
