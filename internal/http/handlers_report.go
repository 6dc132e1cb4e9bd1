package http

import "net/http"

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := PathInt(r, "year")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	month, err := PathInt(r, "month")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	report, err := s.svc.Reports.Monthly(r.Context(), currentUser(r), year, month)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(report).Write(w)
}

func (s *Server) handleYearlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := PathInt(r, "year")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	report, err := s.svc.Reports.Yearly(r.Context(), currentUser(r), year)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(report).Write(w)
}
