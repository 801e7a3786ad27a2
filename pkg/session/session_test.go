package session_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/middleware/pkg/async"
	"github.com/dmitrymomot/middleware/pkg/cookie"
	"github.com/dmitrymomot/middleware/pkg/logger"
	"github.com/dmitrymomot/middleware/pkg/session"
)

func TestSessionWithoutCookie(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stateless", func(t *testing.T) {
		m := newManager(t)
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))

		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.NotEmpty(t, sess.ID())

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.Equal(t, sess.ID(), dec.Payload.SessionID)
		assert.NotZero(t, dec.Payload.IssuedAt)
		assert.Nil(t, dec.Payload.Claims)
	})

	t.Run("storage backed", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		m := newManager(t, session.WithStorage(store))
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))

		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		require.NoError(t, sess.Persist(ctx))

		dec := openCookie(t, m, rec)
		stored, err := store.Get(ctx, dec.Payload.SessionID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
		assert.Empty(t, stored)
	})
}

func TestSessionValidCookie(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stateless data round trips", func(t *testing.T) {
		m := newManager(t)
		token := seal(t, m, session.Payload{SessionID: "abc", Claims: map[string]any{"user": "alice"}}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))

		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "alice"}, data)
		assert.Equal(t, "abc", sess.ID())

		require.NoError(t, sess.Persist(ctx))
		assert.Empty(t, rec.Header().Values("Set-Cookie"), "initialised session writes no cookie")
	})

	t.Run("storage data", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"user": "alice"}))
		m := newManager(t, session.WithStorage(store))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "alice"}, data)
	})

	t.Run("storage miss creates a new session", func(t *testing.T) {
		m := newManager(t, session.WithStorage(session.NewMemoryStorage(0)))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.NotEqual(t, "abc", sess.ID())

		require.NoError(t, sess.Persist(ctx))
		assert.Equal(t, sess.ID(), openCookie(t, m, rec).Payload.SessionID)
	})

	t.Run("storage read failure", func(t *testing.T) {
		boom := errors.New("boom")
		m := newManager(t, session.WithStorage(failingStorage{err: boom}))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		_, err := sess.Get(ctx, nil)
		assert.ErrorIs(t, err, session.ErrStorage)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid token is logged and replaced", func(t *testing.T) {
		buf := &bytes.Buffer{}
		m := newManager(t, session.WithLogger(logger.New(logger.WithOutput(buf))))

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie("garbage"))
		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.Contains(t, buf.String(), "discarding invalid session token")

		require.NoError(t, sess.Persist(ctx))
		assert.NotNil(t, findCookie(rec, "sid"))
	})
}

func TestSessionExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	duration := session.Duration{Absolute: time.Hour, Inactivity: 10 * time.Minute}

	setup := func(t *testing.T, hooks *hookRecorder) (*session.Manager, *session.MemoryStorage, *testClock, string) {
		t.Helper()
		clock := newClock()
		store := session.NewMemoryStorage(0)
		m := newManager(t,
			session.WithStorage(store),
			session.WithClock(clock.Now),
			session.WithDuration(duration.Absolute, duration.Inactivity),
			session.WithHooks(hooks.hooks()),
		)
		require.NoError(t, store.Set(ctx, "old", session.Data{"user": "alice"}))
		token := seal(t, m, session.Payload{SessionID: "old"}, &duration)
		clock.Advance(20 * time.Minute)
		return m, store, clock, token
	}

	t.Run("no refresh starts over", func(t *testing.T) {
		hooks := &hookRecorder{}
		m, store, _, token := setup(t, hooks)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		data, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.NotEqual(t, "old", sess.ID())

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.Equal(t, sess.ID(), dec.Payload.SessionID)
		assert.False(t, dec.Expired)

		// stale entry is left for TTL cleanup
		stale, err := store.Get(ctx, "old")
		require.NoError(t, err)
		assert.NotNil(t, stale)
		assert.Empty(t, hooks.Events())
	})

	t.Run("refresh keeps identity", func(t *testing.T) {
		hooks := &hookRecorder{}
		m, store, clock, token := setup(t, hooks)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		data, err := sess.Get(ctx, func(_ context.Context, current session.Data) (session.Data, error) {
			assert.Equal(t, session.Data{"user": "alice"}, current)
			current["refreshed"] = true
			return current, nil
		})
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "alice", "refreshed": true}, data)
		assert.Equal(t, "old", sess.ID())
		assert.Equal(t, []string{"refresh"}, hooks.Events())

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.False(t, dec.Expired)
		assert.Equal(t, "old", dec.Payload.SessionID)
		assert.Equal(t, epoch.Unix(), dec.Payload.IssuedAt)
		assert.Equal(t, clock.Now().Add(duration.Inactivity).Unix(), dec.Payload.Expiry)
		assert.Equal(t, 600, findCookie(rec, "sid").MaxAge)

		stored, err := store.Get(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, true, stored["refreshed"])
	})

	t.Run("refresh returning nil starts over", func(t *testing.T) {
		hooks := &hookRecorder{}
		m, _, _, token := setup(t, hooks)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		data, err := sess.Get(ctx, func(context.Context, session.Data) (session.Data, error) {
			return nil, nil
		})
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.NotEmpty(t, sess.ID())
		assert.NotEqual(t, "old", sess.ID())

		require.Equal(t, []string{"refresh"}, hooks.Events())
		assert.Nil(t, hooks.data[0])
	})

	t.Run("refresh error destroys", func(t *testing.T) {
		hooks := &hookRecorder{}
		m, store, _, token := setup(t, hooks)
		boom := errors.New("user banned")

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		_, err := sess.Get(ctx, func(context.Context, session.Data) (session.Data, error) {
			return nil, boom
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, session.ErrRefreshFailed)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []string{"refresh"}, hooks.Events())
		assert.Nil(t, hooks.data[0])

		_, err = sess.Data()
		assert.ErrorIs(t, err, session.ErrSessionDestroyed)
		_, err = sess.Get(ctx, nil)
		assert.ErrorIs(t, err, session.ErrSessionDestroyed)

		require.NoError(t, sess.Persist(ctx))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

		// implicit destroy keeps storage
		stored, err := store.Get(ctx, "old")
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})
}

func TestSessionAbsoluteLifetime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keep := func(calls *int) session.RefreshFunc {
		return func(_ context.Context, current session.Data) (session.Data, error) {
			*calls++
			return current, nil
		}
	}

	t.Run("refresh cannot outlive absolute lifetime", func(t *testing.T) {
		clock := newClock()
		duration := session.Duration{Absolute: time.Hour}
		m := newManager(t, session.WithClock(clock.Now), session.WithDuration(duration.Absolute, 0))
		token := seal(t, m, session.Payload{SessionID: "old", Claims: map[string]any{"user": "alice"}}, &duration)
		clock.Advance(2 * time.Hour)

		var calls int
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		data, err := sess.Get(ctx, keep(&calls))
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.Zero(t, calls)
		assert.NotEqual(t, "old", sess.ID())

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.False(t, dec.Expired)
		assert.Equal(t, clock.Now().Unix(), dec.Payload.IssuedAt)
		assert.Equal(t, 3600, findCookie(rec, "sid").MaxAge)
	})

	t.Run("inactivity refresh stops at the absolute deadline", func(t *testing.T) {
		clock := newClock()
		duration := session.Duration{Absolute: time.Hour, Inactivity: 10 * time.Minute}
		m := newManager(t, session.WithClock(clock.Now), session.WithDuration(duration.Absolute, duration.Inactivity))
		token := seal(t, m, session.Payload{SessionID: "old", Claims: map[string]any{"user": "alice"}}, &duration)

		clock.Advance(55 * time.Minute)
		var calls int
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		data, err := sess.Get(ctx, keep(&calls))
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "alice"}, data)
		assert.Equal(t, 1, calls)
		require.NoError(t, sess.Persist(ctx))

		// capped by the absolute deadline, five minutes away
		assert.Equal(t, 300, findCookie(rec, "sid").MaxAge)
		refreshed := findCookie(rec, "sid").Value

		clock.Advance(6 * time.Minute)
		sess = m.Load(httptest.NewRecorder(), requestWithCookie(refreshed))
		data, err = sess.Get(ctx, keep(&calls))
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.Equal(t, 1, calls)
		assert.NotEqual(t, "old", sess.ID())
	})

	t.Run("update near the deadline keeps the remaining lifetime", func(t *testing.T) {
		clock := newClock()
		m := newManager(t, session.WithClock(clock.Now), session.WithDuration(time.Hour, 0))
		token := seal(t, m, session.Payload{SessionID: "abc", Claims: map[string]any{"n": 1}}, &session.Duration{Absolute: time.Hour})
		clock.Advance(time.Hour - time.Second)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		require.NoError(t, sess.Update(ctx, session.Data{"n": 2}))
		require.NoError(t, sess.Persist(ctx))
		assert.Equal(t, 1, findCookie(rec, "sid").MaxAge)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=1")
	})
}

func TestSessionGetIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	clock := newClock()
	transport := &countingTransport{Transport: session.NewCookieTransport(cookie.New(), "sid")}
	m := newManager(t,
		session.WithClock(clock.Now),
		session.WithDuration(time.Hour, time.Minute),
		session.WithTransport(transport),
	)
	token := seal(t, m, session.Payload{SessionID: "abc", Claims: map[string]any{"n": 1}}, &session.Duration{Absolute: time.Hour, Inactivity: time.Minute})
	clock.Advance(5 * time.Minute)

	calls := 0
	refresh := func(_ context.Context, d session.Data) (session.Data, error) {
		calls++
		d["calls"] = calls
		return d, nil
	}

	sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
	first, err := sess.Get(ctx, refresh)
	require.NoError(t, err)
	second, err := sess.Get(ctx, refresh)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, transport.gets)
}

func TestSessionUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates without cookie", func(t *testing.T) {
		hooks := &hookRecorder{}
		m := newManager(t, session.WithHooks(hooks.hooks()))

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"user": "alice"}))
		assert.NotEmpty(t, sess.ID())
		assert.Equal(t, []string{"create"}, hooks.Events())

		data, err := sess.Data()
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "alice"}, data)

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.Equal(t, sess.ID(), dec.Payload.SessionID)
		assert.Equal(t, map[string]any{"user": "alice"}, dec.Payload.Claims)
	})

	t.Run("keeps sid of valid session", func(t *testing.T) {
		hooks := &hookRecorder{}
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"n": 1}))
		m := newManager(t, session.WithStorage(store), session.WithHooks(hooks.hooks()))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		require.NoError(t, sess.UpdateFunc(ctx, func(current session.Data) (session.Data, error) {
			n, _ := current.GetInt("n")
			current["n"] = n + 1
			return current, nil
		}))
		assert.Equal(t, "abc", sess.ID())
		assert.Equal(t, []string{"update"}, hooks.Events())

		require.NoError(t, sess.Persist(ctx))
		dec := openCookie(t, m, rec)
		assert.Equal(t, "abc", dec.Payload.SessionID)
		assert.Nil(t, dec.Payload.Claims, "storage backed cookie carries no data")

		stored, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, session.Data{"n": 2}, stored)
	})

	t.Run("update after get on new session", func(t *testing.T) {
		hooks := &hookRecorder{}
		m := newManager(t, session.WithHooks(hooks.hooks()))

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(""))
		_, err := sess.Get(ctx, nil)
		require.NoError(t, err)
		id := sess.ID()

		require.NoError(t, sess.Update(ctx, session.Data{"user": "alice"}))
		assert.Equal(t, id, sess.ID())
		assert.Equal(t, []string{"create"}, hooks.Events())
	})

	t.Run("expired cookie is not reused", func(t *testing.T) {
		clock := newClock()
		m := newManager(t, session.WithClock(clock.Now))
		token := seal(t, m, session.Payload{SessionID: "abc"}, &session.Duration{Absolute: time.Minute})
		clock.Advance(time.Hour)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		require.NoError(t, sess.UpdateFunc(ctx, func(current session.Data) (session.Data, error) {
			assert.Nil(t, current)
			return session.Data{"fresh": true}, nil
		}))
		assert.NotEqual(t, "abc", sess.ID())
	})

	t.Run("fn error leaves state untouched", func(t *testing.T) {
		m := newManager(t)
		sess := m.Load(httptest.NewRecorder(), requestWithCookie(""))

		boom := errors.New("boom")
		err := sess.UpdateFunc(ctx, func(session.Data) (session.Data, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)

		_, err = sess.Data()
		assert.ErrorIs(t, err, session.ErrSessionNotInitialised)
	})

	t.Run("registered keys are not stored as claims", func(t *testing.T) {
		m := newManager(t)
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"sid": "forged", "user": "alice"}))
		require.NoError(t, sess.Persist(ctx))

		dec := openCookie(t, m, rec)
		assert.Equal(t, sess.ID(), dec.Payload.SessionID)
		assert.NotEqual(t, "forged", dec.Payload.SessionID)
		assert.Equal(t, map[string]any{"user": "alice"}, dec.Payload.Claims)
	})
}

func TestSessionDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("after get", func(t *testing.T) {
		hooks := &hookRecorder{}
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"user": "alice"}))
		m := newManager(t, session.WithStorage(store), session.WithHooks(hooks.hooks()))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		_, err := sess.Get(ctx, nil)
		require.NoError(t, err)

		sess.Delete(ctx)
		assert.Equal(t, []string{"delete"}, hooks.Events())
		assert.Equal(t, session.Data{"user": "alice"}, hooks.data[0])

		_, err = sess.Data()
		assert.ErrorIs(t, err, session.ErrSessionDestroyed)

		require.NoError(t, sess.Persist(ctx))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

		stored, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("before get", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"user": "alice"}))
		m := newManager(t, session.WithStorage(store))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		sess.Delete(ctx)
		require.NoError(t, sess.Persist(ctx))

		assert.Equal(t, 0, store.Len())
		assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
	})

	t.Run("update after delete issues a new sid", func(t *testing.T) {
		hooks := &hookRecorder{}
		m := newManager(t, session.WithHooks(hooks.hooks()))
		token := seal(t, m, session.Payload{SessionID: "abc", Claims: map[string]any{"user": "alice"}}, nil)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		_, err := sess.Get(ctx, nil)
		require.NoError(t, err)

		sess.Delete(ctx)
		require.NoError(t, sess.Update(ctx, session.Data{"user": "bob"}))
		assert.NotEqual(t, "abc", sess.ID())
		assert.Equal(t, []string{"delete", "create"}, hooks.Events())
	})

	t.Run("rotation removes the old storage entry", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"visits": 3}))
		m := newManager(t, session.WithStorage(store))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(token))
		_, err := sess.Get(ctx, nil)
		require.NoError(t, err)

		sess.Delete(ctx)
		require.NoError(t, sess.Update(ctx, session.Data{"user": "bob"}))
		newID := sess.ID()
		require.NoError(t, sess.Persist(ctx))

		old, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, old)

		current, err := store.Get(ctx, newID)
		require.NoError(t, err)
		assert.Equal(t, session.Data{"user": "bob"}, current)
		assert.Equal(t, newID, openCookie(t, m, rec).Payload.SessionID)
	})

	t.Run("rotation before get removes the old entry", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		require.NoError(t, store.Set(ctx, "abc", session.Data{"visits": 3}))
		m := newManager(t, session.WithStorage(store))
		token := seal(t, m, session.Payload{SessionID: "abc"}, nil)

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(token))
		sess.Delete(ctx)
		require.NoError(t, sess.Update(ctx, session.Data{"user": "bob"}))
		require.NoError(t, sess.Persist(ctx))

		assert.Equal(t, 1, store.Len())
		old, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, old)
	})
}

func TestSessionPersist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("untouched session writes nothing", func(t *testing.T) {
		m := newManager(t)
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))

		require.NoError(t, sess.Persist(ctx))
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})

	t.Run("runs once", func(t *testing.T) {
		m := newManager(t)
		sess := m.Load(httptest.NewRecorder(), requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"k": "v"}))

		require.NoError(t, sess.Persist(ctx))
		assert.ErrorIs(t, sess.Persist(ctx), session.ErrAlreadyPersisted)
	})

	t.Run("cancelled context skips side effects", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		m := newManager(t, session.WithStorage(store))
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"k": "v"}))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, sess.Persist(cancelled), context.Canceled)
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("storage write failure", func(t *testing.T) {
		boom := errors.New("boom")
		m := newManager(t, session.WithStorage(failingStorage{err: boom}))
		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"k": "v"}))

		err := sess.Persist(ctx)
		assert.ErrorIs(t, err, session.ErrStorage)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, rec.Header().Values("Set-Cookie"))
	})

	t.Run("background scheduler", func(t *testing.T) {
		store := session.NewMemoryStorage(0)
		jobs := async.NewGroup()
		m := newManager(t, session.WithStorage(store), session.WithScheduler(jobs))

		sess := m.Load(httptest.NewRecorder(), requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"k": "v"}))
		require.NoError(t, sess.Persist(ctx))
		require.NoError(t, jobs.Wait())

		stored, err := store.Get(ctx, sess.ID())
		require.NoError(t, err)
		assert.Equal(t, session.Data{"k": "v"}, stored)
	})

	t.Run("background failure is logged", func(t *testing.T) {
		boom := errors.New("boom")
		buf := &bytes.Buffer{}
		jobs := async.NewGroup()
		m := newManager(t,
			session.WithStorage(failingStorage{err: boom}),
			session.WithScheduler(jobs),
			session.WithLogger(logger.New(logger.WithOutput(buf))),
		)

		rec := httptest.NewRecorder()
		sess := m.Load(rec, requestWithCookie(""))
		require.NoError(t, sess.Update(ctx, session.Data{"k": "v"}))
		require.NoError(t, sess.Persist(ctx))
		assert.NotNil(t, findCookie(rec, "sid"))

		assert.ErrorIs(t, jobs.Wait(), boom)
		assert.Contains(t, buf.String(), "background session write failed")
		assert.Contains(t, buf.String(), sess.ID())
	})
}

func TestSessionDataBeforeUse(t *testing.T) {
	t.Parallel()

	m := newManager(t)
	sess := m.Load(httptest.NewRecorder(), requestWithCookie(""))

	_, err := sess.Data()
	assert.ErrorIs(t, err, session.ErrSessionNotInitialised)
	assert.Empty(t, sess.ID())
}
