package httpserver

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/newmobile/internal/adapters/export"
	"github.com/phenrril/newmobile/internal/domain"
	"github.com/phenrril/newmobile/internal/usecase"
)

const (
	dayLayout          = "2006-01-02"
	defaultReportRange = 30 * 24 * time.Hour
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) readAdminToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if c, err := r.Cookie(adminCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.readAdminToken(r)
		if tok == "" {
			writeError(w, r, domain.Unauthorized("admin token required"))
			return
		}
		claims, err := s.deps.Tokens.Verify(tok)
		if err != nil {
			log.Debug().Err(err).Msg("admin token rejected")
			writeError(w, r, domain.Unauthorized("invalid token"))
			return
		}
		if claims.Role != usecase.RoleAdmin {
			writeError(w, r, domain.Unauthorized("admin role required"))
			return
		}
		if len(s.adminAllowed) > 0 {
			if _, ok := s.adminAllowed[strings.ToLower(claims.Email)]; !ok {
				writeError(w, r, domain.Unauthorized("email not allowed"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) apiRecordPurchase(w http.ResponseWriter, r *http.Request) {
	var in usecase.RecordPurchaseInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.deps.Purchases.RecordPurchase(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) apiRecentPurchases(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, domain.Validation("limit must be an integer"))
			return
		}
		limit = n
	}
	list, err := s.deps.Purchases.ListRecentPurchases(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiUserSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.deps.Users.SummarizeUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// reportRange reads from/to as dates. to covers its whole day; the default
// is the 30 days up to now.
func reportRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	q := r.URL.Query()
	to := now
	from := now.Add(-defaultReportRange)
	if raw := q.Get("to"); raw != "" {
		d, err := time.ParseInLocation(dayLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Validation("to must be YYYY-MM-DD")
		}
		to = d.Add(24*time.Hour - time.Nanosecond)
		if q.Get("from") == "" {
			from = to.Add(-defaultReportRange)
		}
	}
	if raw := q.Get("from"); raw != "" {
		d, err := time.ParseInLocation(dayLayout, raw, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, domain.Validation("from must be YYYY-MM-DD")
		}
		from = d
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, domain.Validation("from must not be after to")
	}
	return from, to, nil
}

func (s *Server) apiSalesReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.deps.Purchases.SalesReport(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) apiExportPurchases(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r, time.Now().UTC())
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.deps.Purchases.ListInRange(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.PurchasesXLSX(&buf, list); err != nil {
		writeError(w, r, domain.Persistence(err, "render xlsx"))
		return
	}
	name := "ventas_" + from.Format(dayLayout) + "_" + to.Format(dayLayout) + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
