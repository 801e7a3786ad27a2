package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/dmitrymomot/middleware/pkg/logger"
)

// Session is the per-request view of a client session.
//
// Nothing is decrypted until Get, Update, UpdateFunc or Delete is called,
// and nothing is written until Persist. A Session must not be reused
// across requests. Refresh functions and hooks run while the Session is
// locked and must not call back into it.
type Session struct {
	mu sync.Mutex

	m *Manager
	w http.ResponseWriter
	r *http.Request

	dec       *Decrypted
	res       *result
	persisted bool

	// deleted holds sids removed from Storage on Persist, whatever the
	// final action is
	deleted []string
}

// Get returns the session data, computing the session state on first use.
// Later calls return the same state without decrypting again or calling
// refresh. refresh is only consulted for an expired cookie.
//
// A new or anonymous session yields nil data and no error. A failing
// refresh returns an error wrapping ErrRefreshFailed and leaves the session
// destroyed, so the cookie is cleared on Persist.
func (s *Session) Get(ctx context.Context, refresh RefreshFunc) (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.res != nil {
		if s.res.action == actionDestroy {
			return nil, ErrSessionDestroyed
		}
		return s.res.data, nil
	}

	res, err := s.m.machine.derive(ctx, s.decrypt(ctx), refresh)
	if err != nil {
		if res.action == actionDestroy {
			s.res = &res
		}
		return nil, err
	}

	s.res = &res
	return res.data, nil
}

// Update replaces the session data. An existing valid session keeps its
// sid; otherwise a new session is created.
func (s *Session) Update(ctx context.Context, data Data) error {
	return s.UpdateFunc(ctx, func(Data) (Data, error) {
		return data, nil
	})
}

// UpdateFunc derives new session data from the current data, which is
// nil when a new session is being created. An error from fn leaves the
// session state untouched.
func (s *Session) UpdateFunc(ctx context.Context, fn func(current Data) (Data, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dec Decrypted
	if s.res == nil {
		dec = s.decrypt(ctx)
	}

	res, err := s.m.machine.update(ctx, s.res, dec, fn)
	if err != nil {
		return err
	}

	s.res = &res
	return nil
}

// Delete marks the session for destruction. The deleted session is also
// removed from Storage on Persist, even when Update starts a new session
// later in the same request.
func (s *Session) Delete(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.res == nil {
		if p := s.decrypt(ctx).Payload; p != nil {
			s.markDeleted(p.SessionID)
		}
		s.res = &result{action: actionDestroy}
		return
	}

	hooks := s.m.machine.hooks
	hooks.fire(hooks.OnDelete, ctx, s.res.data)

	if p := s.res.payload; p != nil {
		s.markDeleted(p.SessionID)
	}
	s.res = &result{
		action:  actionDestroy,
		payload: s.res.payload,
	}
}

func (s *Session) markDeleted(sid string) {
	if sid != "" && !slices.Contains(s.deleted, sid) {
		s.deleted = append(s.deleted, sid)
	}
}

// Data returns the current session data.
func (s *Session) Data() (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.res == nil:
		return nil, ErrSessionNotInitialised
	case s.res.action == actionDestroy:
		return nil, ErrSessionDestroyed
	default:
		return s.res.data, nil
	}
}

// ID returns the session id, or an empty string when the session has not
// been computed yet or has no identity.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.res == nil || s.res.payload == nil {
		return ""
	}
	return s.res.payload.SessionID
}

// Persist finalizes the session: it writes storage and sets or clears the
// token. It is a no-op when the session was never touched and must be
// called at most once. If ctx is already done nothing is written.
func (s *Session) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persisted {
		return ErrAlreadyPersisted
	}
	s.persisted = true

	if s.res == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.removeDeleted(ctx); err != nil {
		return err
	}

	switch s.res.action {
	case actionUpdate:
		return s.persistUpdate(ctx)
	case actionDestroy:
		return s.m.transport.ClearToken(s.w)
	default:
		return nil
	}
}

func (s *Session) persistUpdate(ctx context.Context) error {
	m := s.m
	payload := s.res.payload.Clone()

	if m.storage != nil {
		payload.Claims = nil

		data := s.res.data.Clone()
		if data == nil {
			data = Data{}
		}
		sid := payload.SessionID
		if err := s.schedule(ctx, "set", sid, func(ctx context.Context) error {
			return m.storage.Set(ctx, sid, data)
		}); err != nil {
			return err
		}
	} else {
		payload.Claims = claimsFromData(s.res.data)
	}

	sealed, err := m.codec.Encrypt(*payload, m.duration)
	if err != nil {
		return err
	}

	return m.transport.SetToken(s.w, sealed)
}

// removeDeleted drops every session deleted during this request from Storage.
func (s *Session) removeDeleted(ctx context.Context) error {
	m := s.m
	if m.storage == nil {
		return nil
	}

	for _, sid := range s.deleted {
		if err := s.schedule(ctx, "delete", sid, func(ctx context.Context) error {
			return m.storage.Delete(ctx, sid)
		}); err != nil {
			return err
		}
	}
	return nil
}

// schedule runs a storage write inline, or hands it to the configured
// Scheduler. Background failures can only be logged.
func (s *Session) schedule(ctx context.Context, op, sid string, fn func(context.Context) error) error {
	m := s.m

	if m.scheduler == nil {
		if err := fn(ctx); err != nil {
			return errors.Join(ErrStorage, fmt.Errorf("%s %s: %w", op, sid, err))
		}
		return nil
	}

	m.scheduler.Go(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			m.logger.ErrorContext(ctx, "background session write failed",
				logger.Component("session"),
				logger.Event("storage_"+op),
				logger.SessionID(sid),
				logger.Error(err),
			)
			return err
		}
		return nil
	})
	return nil
}

// decrypt reads and opens the request token once per request.
// A missing or unusable token yields a zero Decrypted.
func (s *Session) decrypt(ctx context.Context) Decrypted {
	if s.dec != nil {
		return *s.dec
	}

	var dec Decrypted
	token, err := s.m.transport.GetToken(s.r)
	if err == nil {
		dec, err = s.m.codec.Decrypt(token)
		if err != nil {
			s.m.logger.WarnContext(ctx, "discarding invalid session token",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	}

	s.dec = &dec
	return dec
}
