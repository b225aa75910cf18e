package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/timetrak/client/internal/domain"
)

func (s *AdminService) ListPayments(ctx context.Context, p PageRequest) (domain.Page[domain.Payment], error) {
	return getPage[domain.Payment](ctx, s.c, "/admin/payments", p.Values())
}

func (s *AdminService) ListPaymentsByStatus(ctx context.Context, status domain.PaymentStatus, p PageRequest) (domain.Page[domain.Payment], error) {
	return getPage[domain.Payment](ctx, s.c, "/admin/payments/status/"+url.PathEscape(string(status)), p.Values())
}

func (s *AdminService) ListPaymentsByEmployee(ctx context.Context, employeeID int64, p PageRequest) (domain.Page[domain.Payment], error) {
	return getPage[domain.Payment](ctx, s.c, "/admin/payments/employee/"+itoa(employeeID), p.Values())
}

func (s *AdminService) ListPaymentsByPeriod(ctx context.Context, periodNumber int, p PageRequest) (domain.Page[domain.Payment], error) {
	return getPage[domain.Payment](ctx, s.c, "/admin/payments/period/"+strconv.Itoa(periodNumber), p.Values())
}

// CalculatePeriod 依赖服务端的幂等重算
func (s *AdminService) CalculatePeriod(ctx context.Context, req CalculatePeriodRequest) (*CalculatePeriodResult, error) {
	return call[*CalculatePeriodResult](ctx, s.c, http.MethodPost, "/admin/payments/calculate-period", req)
}

func (s *AdminService) UpdatePaymentStatus(ctx context.Context, paymentID int64, req PaymentStatusRequest) (*domain.Payment, error) {
	return call[*domain.Payment](ctx, s.c, http.MethodPatch, "/admin/payments/"+itoa(paymentID)+"/status", req)
}

// Download 是服务端生成的文件，内容对客户端不透明；调用方负责关闭 Body
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

func (s *AdminService) ExportPayments(ctx context.Context, req ExportRequest) (*Download, error) {
	format := req.Format
	if format == "" {
		format = "csv"
	}
	query := url.Values{"format": {format}}
	if req.PeriodNumber > 0 {
		query.Set("periodNumber", strconv.Itoa(req.PeriodNumber))
	}
	if req.Status != "" {
		query.Set("status", string(req.Status))
	}

	resp, err := s.c.send(ctx, request{method: http.MethodGet, path: "/admin/payments/export", query: query})
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("payments.%s", format)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}

	return &Download{
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
