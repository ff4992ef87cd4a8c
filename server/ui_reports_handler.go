package server

import (
	"fmt"
	"net/http"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/gateway"
)

// ReportCard is one figure on the reports page.
type ReportCard struct {
	Label string
	Value string
	Warn  bool
}

func reportCards(sum gateway.ReportSummary) []ReportCard {
	return []ReportCard{
		{Label: "Appointments today", Value: fmt.Sprint(sum.AppointmentsToday)},
		{Label: "Open appointments", Value: fmt.Sprint(sum.OpenAppointments)},
		{Label: "Completed this month", Value: fmt.Sprint(sum.CompletedThisMonth)},
		{Label: "Revenue this month", Value: fmt.Sprintf("%.2f", sum.RevenueThisMonth)},
		{Label: "Outstanding invoices", Value: fmt.Sprint(sum.OutstandingInvoices), Warn: sum.OutstandingInvoices > 0},
		{Label: "Low stock parts", Value: fmt.Sprint(sum.LowStockParts), Warn: sum.LowStockParts > 0},
		{Label: "Active technicians", Value: fmt.Sprint(sum.ActiveTechnicians)},
	}
}

func (s *Server) ReportsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn := connFromContext(r.Context())
		if conn == nil {
			s.handleBackendError(w, r, gateway.Expired(), RouteReports)
			return
		}

		summary, err := conn.Reports().Summary(r.Context())
		if err != nil {
			if s.handleBackendError(w, r, err, RouteReports) {
				return
			}
			notice := crud.Notice{Kind: crud.NoticeError, Message: gateway.MessageOf(err)}
			s.renderPage(w, http.StatusOK, "report.html", s.newPageData(r, "Reports", []ReportCard(nil), notice))
			return
		}
		s.renderPage(w, http.StatusOK, "report.html", s.newPageData(r, "Reports", reportCards(summary)))
	}
}
