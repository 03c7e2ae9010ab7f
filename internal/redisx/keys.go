package redisx

import "time"

const (
	// Serializes OTP issuance per phone: lock:otp:{phone}
	KeyOTPLock = "lock:otp:%s"
)

var (
	TTLLock = 5 * time.Second
)
