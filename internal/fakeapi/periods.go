package fakeapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/timetrak/client/internal/domain"
)

const (
	dateLayout     = "2006-01-02"
	periodDays     = 14
	availableCount = 6
)

// 双周周期从这个周一开始编号
var periodAnchor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func periodByNumber(n int) domain.PaymentPeriod {
	start := periodAnchor.AddDate(0, 0, (n-1)*periodDays)
	end := start.AddDate(0, 0, periodDays-1)
	return domain.PaymentPeriod{
		PeriodNumber: n,
		PeriodStart:  start.Format(dateLayout),
		PeriodEnd:    end.Format(dateLayout),
		DisplayLabel: fmt.Sprintf("Period %d (%s - %s)", n, start.Format("Jan 2"), end.Format("Jan 2, 2006")),
	}
}

func periodNumberAt(t time.Time) int {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(periodAnchor).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/periodDays + 1
}

// periodByRange 只接受与某个周期边界完全一致的区间
func periodByRange(start, end string) (domain.PaymentPeriod, bool) {
	t, err := time.Parse(dateLayout, start)
	if err != nil {
		return domain.PaymentPeriod{}, false
	}
	p := periodByNumber(periodNumberAt(t))
	return p, p.SameRange(start, end)
}

func (s *Server) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, periodByNumber(periodNumberAt(s.now())))
}

// AvailablePeriods 返回当前周期及之前的若干个周期，最新的在前
func (s *Server) AvailablePeriods(w http.ResponseWriter, r *http.Request) {
	current := periodNumberAt(s.now())
	periods := []domain.PaymentPeriod{}
	for n := current; n >= 1 && len(periods) < availableCount; n-- {
		periods = append(periods, periodByNumber(n))
	}
	s.writeJSON(w, r, http.StatusOK, periods)
}

func (s *Server) MostRecentCompletedPeriod(w http.ResponseWriter, r *http.Request) {
	current := periodNumberAt(s.now())
	if current <= 1 {
		s.notFound(w, r, "Completed period")
		return
	}
	s.writeJSON(w, r, http.StatusOK, periodByNumber(current-1))
}
