package verification

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-authix/internal/domain"
	redisinfra "github.com/go-authix/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "+15551234567"

func newTestLedger(t *testing.T) (*Ledger, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLedger(redisinfra.NewCache(client), DefaultTTL), mr
}

func TestSend_SixDigitCodeWithTTL(t *testing.T) {
	l, mr := newTestLedger(t)
	code, err := l.Send(context.Background(), phone)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)

	stored, err := mr.Get(codeKeyPrefix + phone)
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	assert.Equal(t, 300*time.Second, mr.TTL(codeKeyPrefix+phone))
}

func TestSend_ReplacesPreviousCode(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()
	_, err := l.Send(ctx, phone)
	require.NoError(t, err)
	second, err := l.Send(ctx, phone)
	require.NoError(t, err)

	stored, _ := mr.Get(codeKeyPrefix + phone)
	assert.Equal(t, second, stored)
}

func TestVerify_SingleUse(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	ok, err := l.Verify(ctx, phone, code, domain.SceneLogin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Verify(ctx, phone, code, domain.SceneLogin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_WrongCodeKeepsEntry(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	ok, err := l.Verify(ctx, phone, wrong, domain.SceneLogin)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Verify(ctx, phone, code, domain.SceneLogin)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_Expired(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	mr.FastForward(301 * time.Second)
	ok, err := l.Verify(ctx, phone, code, domain.SceneLogin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_NoCodeSent(t *testing.T) {
	l, _ := newTestLedger(t)
	ok, err := l.Verify(context.Background(), phone, "123456", domain.SceneLogin)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_UnknownScene(t *testing.T) {
	l, _ := newTestLedger(t)
	_, err := l.Verify(context.Background(), phone, "123456", domain.Scene("reset"))
	assert.ErrorIs(t, err, domain.ErrUnknownScene)
}

func TestVerify_ConcurrentConsumersOnlyOneWins(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, err := l.Verify(ctx, phone, code, domain.SceneLogin); err == nil && ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}

func TestRegisterScene_GrantsEligibilityWithinWindow(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()

	ok, err := l.Eligible(ctx, phone)
	require.NoError(t, err)
	assert.False(t, ok)

	code, err := l.Send(ctx, phone)
	require.NoError(t, err)
	ok, err = l.Verify(ctx, phone, code, domain.SceneRegister)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Eligible(ctx, phone)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(301 * time.Second)
	ok, err = l.Eligible(ctx, phone)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegisterScene_WrongCodeGrantsNothing(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	ok, err := l.Verify(ctx, phone, wrong, domain.SceneRegister)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(flagKeyPrefix+phone))
	assert.True(t, mr.Exists(codeKeyPrefix+phone), "a wrong guess must not consume the code")
}

func TestRegisterScene_CacheDownKeepsCode(t *testing.T) {
	l, mr := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)

	mr.SetError("LOADING")
	_, err = l.Verify(ctx, phone, code, domain.SceneRegister)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	mr.SetError("")

	// the failed attempt changed nothing, so the same code still works
	ok, err := l.Verify(ctx, phone, code, domain.SceneRegister)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(flagKeyPrefix+phone))
}

func TestLoginScene_DoesNotGrantEligibility(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	code, err := l.Send(ctx, phone)
	require.NoError(t, err)
	_, err = l.Verify(ctx, phone, code, domain.SceneLogin)
	require.NoError(t, err)

	ok, err := l.Eligible(ctx, phone)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearEligibility(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	code, _ := l.Send(ctx, phone)
	_, _ = l.Verify(ctx, phone, code, domain.SceneRegister)

	require.NoError(t, l.ClearEligibility(ctx, phone))
	ok, err := l.Eligible(ctx, phone)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheDown_IsInfrastructureError(t *testing.T) {
	l, mr := newTestLedger(t)
	mr.Close()

	_, err := l.Send(context.Background(), phone)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	_, err = l.Verify(context.Background(), phone, "123456", domain.SceneLogin)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	_, err = l.Eligible(context.Background(), phone)
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
}
