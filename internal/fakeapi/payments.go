package fakeapi

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/timetrak/client/internal/domain"
)

func (s *Server) listPaymentsWhere(w http.ResponseWriter, r *http.Request, keep func(domain.Payment) bool) {
	s.mu.Lock()
	items := filter(sorted(s.state.payments), keep)
	s.mu.Unlock()
	writePage(s, w, r, items)
}

func (s *Server) ListPayments(w http.ResponseWriter, r *http.Request) {
	s.listPaymentsWhere(w, r, func(domain.Payment) bool { return true })
}

func (s *Server) ListPaymentsByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.PaymentStatus(strings.ToUpper(chi.URLParam(r, "status")))
	s.listPaymentsWhere(w, r, func(p domain.Payment) bool { return p.Status == status })
}

func (s *Server) ListPaymentsByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid employee ID")
		return
	}
	s.listPaymentsWhere(w, r, func(p domain.Payment) bool { return p.EmployeeID == employeeID })
}

func (s *Server) ListPaymentsByPeriod(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid period number")
		return
	}
	s.listPaymentsWhere(w, r, func(p domain.Payment) bool { return p.PeriodNumber == number })
}

type calculatePeriodRequest struct {
	PeriodStart string `json:"periodStart" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"periodEnd" validate:"required,datetime=2006-01-02"`
}

type calculatePeriodResult struct {
	PeriodNumber    int             `json:"periodNumber"`
	PaymentsCreated int             `json:"paymentsCreated"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
}

// CalculatePeriod 重复调用是幂等的：CALCULATED 的记录会被重算，
// 已经 ISSUED/COMPLETED/VOIDED 的员工跳过
func (s *Server) CalculatePeriod(w http.ResponseWriter, r *http.Request) {
	var req calculatePeriodRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	period, ok := periodByRange(req.PeriodStart, req.PeriodEnd)
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Dates do not match a payment period")
		return
	}
	if period.PeriodNumber > periodNumberAt(s.now()) {
		s.errorResponse(w, r, http.StatusBadRequest, "Cannot calculate a future period")
		return
	}
	start, _ := time.Parse(dateLayout, period.PeriodStart)
	end, _ := time.Parse(dateLayout, period.PeriodEnd)
	end = end.AddDate(0, 0, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	type total struct {
		hours, amount decimal.Decimal
	}
	totals := make(map[int64]*total)
	for _, sh := range s.state.shifts {
		if sh.Status != domain.ShiftStatusCompleted || sh.ClockOut == nil {
			continue
		}
		if sh.ClockIn.Before(start) || !sh.ClockIn.Before(end) {
			continue
		}
		t, ok := totals[sh.EmployeeID]
		if !ok {
			t = &total{}
			totals[sh.EmployeeID] = t
		}
		hours, _ := earnings(sh.ClockIn, *sh.ClockOut, decimal.Zero)
		t.hours = t.hours.Add(hours)
		t.amount = t.amount.Add(sh.ShiftEarnings)
	}

	existing := make(map[int64]*domain.Payment)
	for _, p := range s.state.payments {
		if p.PeriodNumber == period.PeriodNumber {
			existing[p.EmployeeID] = p
		}
	}

	res := calculatePeriodResult{PeriodNumber: period.PeriodNumber}
	for employeeID, t := range totals {
		p, ok := existing[employeeID]
		switch {
		case ok && p.Status != domain.PaymentStatusCalculated:
			continue
		case !ok:
			p = &domain.Payment{
				ID:           s.state.id(),
				EmployeeID:   employeeID,
				PeriodNumber: period.PeriodNumber,
				PeriodStart:  period.PeriodStart,
				PeriodEnd:    period.PeriodEnd,
				Status:       domain.PaymentStatusCalculated,
			}
			if e, ok := s.state.employees[employeeID]; ok {
				p.EmployeeName = e.Name
			}
			s.state.payments[p.ID] = p
		}
		p.TotalHours = t.hours.Round(2)
		p.TotalEarnings = t.amount.Round(2)
		res.PaymentsCreated++
		res.TotalEarnings = res.TotalEarnings.Add(p.TotalEarnings)
	}
	s.writeJSON(w, r, http.StatusOK, res)
}

// 允许的付款状态流转
var paymentTransitions = map[domain.PaymentStatus][]domain.PaymentStatus{
	domain.PaymentStatusCalculated: {domain.PaymentStatusIssued, domain.PaymentStatusVoided},
	domain.PaymentStatusIssued:     {domain.PaymentStatusCompleted, domain.PaymentStatusVoided},
}

type paymentStatusRequest struct {
	Status domain.PaymentStatus `json:"status" validate:"required,oneof=CALCULATED ISSUED COMPLETED VOIDED"`
}

func (s *Server) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		s.errorResponse(w, r, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	var req paymentStatusRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.state.payments[id]
	if !ok {
		s.notFound(w, r, "Payment")
		return
	}
	allowed := false
	for _, to := range paymentTransitions[p.Status] {
		if to == req.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		s.errorResponse(w, r, http.StatusBadRequest, fmt.Sprintf("Cannot change payment status from %s to %s", p.Status, req.Status))
		return
	}
	p.Status = req.Status
	s.writeJSON(w, r, http.StatusOK, p)
}

// ExportPayments 生成 csv 或 pdf
func (s *Server) ExportPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		s.errorResponse(w, r, http.StatusBadRequest, "format must be csv or pdf")
		return
	}
	periodNumber := 0
	if v := q.Get("periodNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, r, http.StatusBadRequest, "Invalid period number")
			return
		}
		periodNumber = n
	}
	status := domain.PaymentStatus(strings.ToUpper(q.Get("status")))

	s.mu.Lock()
	items := filter(sorted(s.state.payments), func(p domain.Payment) bool {
		if periodNumber > 0 && p.PeriodNumber != periodNumber {
			return false
		}
		return status == "" || p.Status == status
	})
	s.mu.Unlock()

	filename := "payments"
	if periodNumber > 0 {
		filename += "-period-" + strconv.Itoa(periodNumber)
	}
	filename += "." + format

	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case "csv":
		body, err = paymentsCSV(items)
		contentType = "text/csv"
	case "pdf":
		body, err = paymentsPDF(items)
		contentType = "application/pdf"
	}
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logInternalServerError(r, err)
	}
}

func paymentsCSV(items []domain.Payment) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write([]string{"id", "employee", "period", "start", "end", "hours", "earnings", "status"}); err != nil {
		return nil, err
	}
	for _, p := range items {
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.EmployeeName,
			strconv.Itoa(p.PeriodNumber),
			p.PeriodStart,
			p.PeriodEnd,
			p.TotalHours.StringFixed(2),
			p.TotalEarnings.StringFixed(2),
			string(p.Status),
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

// paymentsPDF 使用内置的 Helvetica 字体，超出 cp1252 的字符无法显示
func paymentsPDF(items []domain.Payment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payments")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 10)
	widths := []float64{12, 70, 18, 24, 28, 30}
	for i, h := range []string{"ID", "Employee", "Period", "Hours", "Earnings", "Status"} {
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	total := decimal.Zero
	for _, p := range items {
		cells := []string{
			strconv.FormatInt(p.ID, 10),
			tr(p.EmployeeName),
			strconv.Itoa(p.PeriodNumber),
			p.TotalHours.StringFixed(2),
			p.TotalEarnings.StringFixed(2),
			string(p.Status),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		total = total.Add(p.TotalEarnings)
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %s (%d payments)", total.StringFixed(2), len(items)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
