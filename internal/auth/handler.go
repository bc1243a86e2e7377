package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	RollNumber string `json:"roll_number"`
	Password   string `json:"password"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Email == "" || req.RollNumber == "" || req.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"message": "username, email, roll_number and password are required",
		})
		return
	}

	user, err := h.service.Register(req.Username, req.Email, req.RollNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			respondJSON(w, http.StatusConflict, map[string]string{
				"message": "User with this email already exists.",
				"code":    "EMAIL_EXISTS",
			})
		case errors.Is(err, ErrRollNumberExists):
			respondJSON(w, http.StatusConflict, map[string]string{
				"message": "User with this roll number already exists.",
				"code":    "ROLL_NUMBER_EXISTS",
			})
		default:
			log.Printf("Error registering user: %v", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully. OTP sent to your email for verification.",
		"userId":  user.ID,
		"email":   user.Email,
	})
}

func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	alreadyVerified, err := h.service.VerifyOTP(req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{
				"message": "User not found.",
				"code":    "USER_NOT_FOUND",
			})
		case errors.Is(err, ErrInvalidOTP):
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"message": "Invalid or expired OTP. Please try again or resend.",
				"code":    "INVALID_OR_EXPIRED_OTP",
			})
		default:
			log.Printf("Error verifying OTP: %v", err)
			http.Error(w, "OTP verification failed", http.StatusInternalServerError)
		}
		return
	}

	if alreadyVerified {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message":         "Account already verified. Please proceed to login.",
			"alreadyVerified": true,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Account verified successfully! You can now log in.",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	token, user, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{
				"message": "User not found with this email.",
				"code":    "USER_NOT_FOUND",
			})
		case errors.Is(err, ErrInvalidCredentials):
			respondJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Invalid credentials.",
				"code":    "INVALID_CREDENTIALS",
			})
		case errors.Is(err, ErrNotVerified):
			respondJSON(w, http.StatusForbidden, map[string]string{
				"message": "Your account is not verified. A new OTP has been sent to your email.",
				"code":    "ACCOUNT_NOT_VERIFIED",
				"email":   req.Email,
			})
		default:
			log.Printf("Error logging in user: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful!",
		"token":   token,
		"user": map[string]interface{}{
			"id":          user.ID,
			"username":    user.Username,
			"email":       user.Email,
			"roll_number": user.RollNumber,
			"is_admin":    user.IsAdmin,
			"is_verified": user.IsVerified,
		},
	})
}

func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.service.ResendOTP(req.Email); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			respondJSON(w, http.StatusNotFound, map[string]string{
				"message": "User not found with this email.",
				"code":    "USER_NOT_FOUND",
			})
		case errors.Is(err, ErrAlreadyVerified):
			respondJSON(w, http.StatusBadRequest, map[string]string{
				"message": "Account is already verified. No need to resend OTP.",
				"code":    "ALREADY_VERIFIED",
			})
		default:
			log.Printf("Error resending OTP: %v", err)
			http.Error(w, "OTP resend failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "New OTP sent to your email.",
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
