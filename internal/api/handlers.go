package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"foodhub/internal/database"
	"foodhub/internal/metrics"
	"foodhub/internal/models"
	"foodhub/internal/service"
)

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("health")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok"})
}

func (s *HTTPServer) handleReserve(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reserve")

	var req models.Reservation
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := s.reservations.Create(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}

	metrics.IncReservationCreated(outcome.Reservation.DeliveryOption)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"reservationId": outcome.Reservation.ID,
		"message":       "Reservation saved",
		"notifications": outcome.Notifications,
	})
}

func (s *HTTPServer) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("request_otp")

	var req models.Reservation
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := s.otps.RequestOTP(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := map[string]any{
		"success":       true,
		"otpId":         outcome.OTPID,
		"message":       "OTP processed",
		"expiresAt":     outcome.ExpiresAt.UTC().Format(time.RFC3339),
		"notifications": outcome.Notifications,
	}
	if outcome.DevCode != "" {
		resp["otp"] = outcome.DevCode
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("verify_otp")

	var req struct {
		OTPID int64  `json:"otpId"`
		OTP   string `json:"otp"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.OTPID <= 0 || req.OTP == "" {
		writeError(w, http.StatusBadRequest, "otpId and otp required")
		return
	}

	outcome, err := s.otps.VerifyOTP(r.Context(), req.OTPID, req.OTP)
	if err != nil {
		metrics.IncOTPVerification(otpOutcome(err))
		s.respondError(w, err)
		return
	}

	metrics.IncOTPVerification("ok")
	metrics.IncReservationCreated(outcome.Reservation.DeliveryOption)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"reservationId":   outcome.Reservation.ID,
		"message":         "Reservation created",
		"paymentRequired": outcome.PaymentRequired,
		"paymentAmount":   outcome.PaymentAmount,
		"notifications":   outcome.Notifications,
	})
}

func (s *HTTPServer) handlePaymentConfirm(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("payment_confirm")

	var req struct {
		ReservationID int64   `json:"reservationId"`
		Amount        float64 `json:"amount"`
		TransactionID string  `json:"transactionId"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ReservationID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid reservationId")
		return
	}

	outcome, err := s.reservations.ConfirmPayment(r.Context(), req.ReservationID, req.Amount, req.TransactionID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	message := "Payment recorded, reservation confirmed"
	if outcome.AlreadyPaid {
		message = "Payment already recorded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       message,
		"alreadyPaid":   outcome.AlreadyPaid,
		"notifications": outcome.Notifications,
	})
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_list")

	includeCancelled := r.URL.Query().Get("include_cancelled") == "1"
	reservations, err := s.reservations.List(r.Context(), includeCancelled)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reservations": reservations})
}

func (s *HTTPServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_update")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.Reservation
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.ID = id

	outcome, err := s.reservations.Update(r.Context(), &req)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Reservation updated",
		"notifications": outcome.Notifications,
	})
}

func (s *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_delete")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	archivedID, err := s.reservations.Delete(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Reservation archived and deleted",
		"archivedId": archivedID,
	})
}

func (s *HTTPServer) handleResendConfirmation(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_resend")

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	results, err := s.reservations.ResendConfirmation(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Confirmation resent",
		"notifications": results,
	})
}

func (s *HTTPServer) respondError(w http.ResponseWriter, err error) {
	var (
		validationErr *service.ValidationError
		timingErr     *service.TimingError
		capacityErr   *database.CapacityError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &timingErr):
		writeError(w, http.StatusBadRequest, timingErr.Error())
	case errors.As(err, &capacityErr):
		metrics.IncCapacityRejection()
		writeError(w, http.StatusBadRequest, capacityErr.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrOTPNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOTPExpired), errors.Is(err, service.ErrOTPMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Reservation not found")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func otpOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrOTPMismatch):
		return "mismatch"
	case errors.Is(err, service.ErrOTPExpired):
		return "expired"
	case errors.Is(err, service.ErrTooManyAttempts):
		return "throttled"
	case errors.Is(err, service.ErrOTPNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{"success": false, "message": message})
}
