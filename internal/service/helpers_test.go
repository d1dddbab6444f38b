package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mohitgusain8671/VoiceNote/internal/storage"
	"github.com/mohitgusain8671/VoiceNote/internal/store"
	"github.com/mohitgusain8671/VoiceNote/pkg/security"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPublicURL = "http://localhost:5000"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	s := store.NewGorm(db)
	t.Cleanup(func() { s.Close(context.Background()) })

	return s
}

func newTestFiles(t *testing.T) *storage.Local {
	t.Helper()

	l, err := storage.NewLocal(filepath.Join(t.TempDir(), "audio"), testPublicURL)
	require.NoError(t, err)

	return l
}

func fastHasher(t *testing.T) *security.PasswordHasher {
	t.Helper()

	h, err := security.NewPasswordHasher(security.HashParams{Memory: 1024, Iterations: 1, Parallelism: 1})
	require.NoError(t, err)

	return h
}

type sentMail struct {
	to   string
	body string
}

type fakeMailer struct {
	mu           sync.Mutex
	verification []sentMail
	otp          []sentMail
	err          error
}

func (f *fakeMailer) SendVerification(_ context.Context, to, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.verification = append(f.verification, sentMail{to, link})
	return nil
}

func (f *fakeMailer) SendOTP(_ context.Context, to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.otp = append(f.otp, sentMail{to, code})
	return nil
}

// lastVerificationToken pulls the token out of the most recent link
func (f *fakeMailer) lastVerificationToken(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.verification)
	link := f.verification[len(f.verification)-1].body

	prefix := testPublicURL + "/api/auth/verify-email/"
	require.True(t, strings.HasPrefix(link, prefix), link)

	return strings.TrimPrefix(link, prefix)
}

func (f *fakeMailer) lastOTP(t *testing.T) string {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.otp)
	return f.otp[len(f.otp)-1].body
}

type fakeAI struct {
	mu             sync.Mutex
	transcription  string
	summary        string
	err            error
	summarizeCalls int
	transcribed    [][]byte
}

func (f *fakeAI) Transcribe(_ context.Context, audio []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.transcribed = append(f.transcribed, audio)
	if f.err != nil {
		return "", f.err
	}

	return f.transcription, nil
}

func (f *fakeAI) Summarize(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.summarizeCalls++
	if f.err != nil {
		return "", f.err
	}

	return f.summary, nil
}

type fixedProber float64

func (p fixedProber) Duration(context.Context, io.Reader) (float64, error) {
	if p < 0 {
		return 0, errors.New("no duration")
	}

	return float64(p), nil
}

func newAccounts(t *testing.T, s store.Store, m Mailer) *AccountService {
	t.Helper()
	return NewAccountService(s, m, security.NewSigner("test-secret"), fastHasher(t), testPublicURL, zap.NewNop())
}
