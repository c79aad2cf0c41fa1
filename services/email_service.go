// File: /services/email_service.go
package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"serenity-api/config"
)

// EmailService sends verification codes on registration and keeps the
// outstanding codes in memory until they expire.
type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer

	mu    sync.RWMutex
	codes map[string]verificationCode

	done chan struct{}
}

type verificationCode struct {
	Code      string
	ExpiresAt time.Time
	Used      bool
}

func NewEmailService(cfg *config.Config) *EmailService {
	service := &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		codes:  make(map[string]verificationCode),
		done:   make(chan struct{}),
	}

	go service.cleanupExpiredCodes()

	return service
}

// Stop ends the expiry sweep goroutine.
func (es *EmailService) Stop() {
	close(es.done)
}

// SendVerificationEmail emails a fresh (or still-valid existing) code
// to the address and returns it.
func (es *EmailService) SendVerificationEmail(email, name string) (string, error) {
	es.mu.Lock()
	existing, exists := es.codes[email]
	var code string
	if exists && !existing.Used && time.Now().Before(existing.ExpiresAt) {
		code = existing.Code
	} else {
		code = generateCode()
		es.codes[email] = verificationCode{
			Code:      code,
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}
	}
	es.mu.Unlock()

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Serenity - Email Verification")
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello %s,\n\nYour Serenity verification code is: %s\n\nThe code expires in 10 minutes. If you did not create an account, ignore this email.\n",
		name, code,
	))

	if err := es.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("send verification email: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"email": email,
	}).Info("verification email sent")

	return code, nil
}

// VerifyCode checks and consumes a verification code.
func (es *EmailService) VerifyCode(email, code string) bool {
	es.mu.Lock()
	defer es.mu.Unlock()

	stored, exists := es.codes[email]
	if !exists || stored.Used || time.Now().After(stored.ExpiresAt) {
		return false
	}
	if stored.Code != code {
		return false
	}

	stored.Used = true
	es.codes[email] = stored

	return true
}

func (es *EmailService) cleanupExpiredCodes() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			es.mu.Lock()
			for email, code := range es.codes {
				if now.After(code.ExpiresAt) {
					delete(es.codes, email)
				}
			}
			es.mu.Unlock()
		case <-es.done:
			return
		}
	}
}

func generateCode() string {
	const digits = "0123456789"
	code := make([]byte, 4)
	for i := range code {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		code[i] = digits[num.Int64()]
	}
	return string(code)
}
