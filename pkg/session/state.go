package session

import (
	"context"
	"errors"
	"time"
)

// action is the pending finalization for a request's session.
type action uint8

const (
	// actionInitialised: valid session, nothing to write
	actionInitialised action = iota + 1
	// actionUpdate: write storage (if any) and issue a new cookie
	actionUpdate
	// actionDestroy: clear the cookie
	actionDestroy
)

func (a action) String() string {
	switch a {
	case actionInitialised:
		return "initialised"
	case actionUpdate:
		return "update"
	case actionDestroy:
		return "destroy"
	default:
		return "unknown"
	}
}

// result is the single per-request session state.
type result struct {
	action  action
	data    Data
	payload *Payload

	// created marks a session first issued during this request
	created bool
}

// RefreshFunc decides what happens to an expired session. Returning new
// data keeps the session (same sid) with a fresh expiry; returning nil
// starts a brand new anonymous session; returning an error destroys it.
type RefreshFunc func(ctx context.Context, data Data) (Data, error)

// machine derives session state from a decrypted cookie.
type machine struct {
	storage  Storage
	duration *Duration
	hooks    Hooks
	newID    func() string
	now      func() time.Time
}

// newPayload issues a payload with a never-before-used sid and no expiry.
func (m *machine) newPayload() *Payload {
	return &Payload{
		SessionID: m.newID(),
		IssuedAt:  m.now().Unix(),
	}
}

func (m *machine) create(data Data) result {
	return result{
		action:  actionUpdate,
		data:    data,
		payload: m.newPayload(),
		created: true,
	}
}

// load returns the data bound to p: from Storage when configured,
// otherwise from the cookie's own claims.
func (m *machine) load(ctx context.Context, p *Payload) (Data, error) {
	if m.storage == nil {
		return dataFromClaims(p.Claims), nil
	}

	data, err := m.storage.Get(ctx, p.SessionID)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return data, nil
}

// derive classifies dec. Storage failures return a zero result and an
// error; a failing refresh returns a destroy result together with an
// error wrapping ErrRefreshFailed.
func (m *machine) derive(ctx context.Context, dec Decrypted, refresh RefreshFunc) (result, error) {
	p := dec.Payload
	if p == nil {
		return m.create(nil), nil
	}

	// Expired and nothing can extend it: start over with a new identity.
	if dec.Expired && (refresh == nil || m.lifetimeOver(p)) {
		return m.create(nil), nil
	}

	data, err := m.load(ctx, p)
	if err != nil {
		return result{}, err
	}
	if data == nil {
		return m.create(nil), nil
	}

	if !dec.Expired {
		return result{action: actionInitialised, data: data, payload: p}, nil
	}

	refreshed, err := refresh(ctx, data.Clone())
	if err != nil {
		m.hooks.fire(m.hooks.OnRefresh, ctx, nil)
		return result{action: actionDestroy, payload: p}, errors.Join(ErrRefreshFailed, err)
	}

	m.hooks.fire(m.hooks.OnRefresh, ctx, refreshed)

	if refreshed == nil {
		return m.create(nil), nil
	}

	next := p.Clone()
	next.Expiry = 0
	return result{action: actionUpdate, data: refreshed, payload: next}, nil
}

// lifetimeOver reports whether p has outlived the absolute lifetime, which
// no refresh can extend because iat is kept across refreshes.
func (m *machine) lifetimeOver(p *Payload) bool {
	if m.duration == nil {
		return false
	}
	deadline := time.Unix(p.IssuedAt, 0).Add(m.duration.Absolute)
	return !deadline.After(m.now())
}

// current returns the live, non-destroyed session for an explicit update.
// Expired cookies never count, and refresh is never invoked here.
func (m *machine) current(ctx context.Context, res *result, dec Decrypted) (result, bool, error) {
	if res != nil {
		if res.action == actionDestroy {
			return result{}, false, nil
		}
		return *res, true, nil
	}

	if dec.Payload == nil || dec.Expired {
		return result{}, false, nil
	}

	data, err := m.load(ctx, dec.Payload)
	if err != nil {
		return result{}, false, err
	}
	if data == nil {
		return result{}, false, nil
	}

	return result{action: actionInitialised, data: data, payload: dec.Payload}, true, nil
}

// update applies fn to the current session or creates a new one.
func (m *machine) update(ctx context.Context, res *result, dec Decrypted, fn func(Data) (Data, error)) (result, error) {
	cur, ok, err := m.current(ctx, res, dec)
	if err != nil {
		return result{}, err
	}

	if !ok {
		next, err := fn(nil)
		if err != nil {
			return result{}, err
		}
		created := m.create(next)
		m.hooks.fire(m.hooks.OnCreate, ctx, next)
		return created, nil
	}

	next, err := fn(cur.data.Clone())
	if err != nil {
		return result{}, err
	}

	updated := result{
		action:  actionUpdate,
		data:    next,
		payload: cur.payload,
		created: cur.created,
	}
	if cur.created {
		m.hooks.fire(m.hooks.OnCreate, ctx, next)
	} else {
		m.hooks.fire(m.hooks.OnUpdate, ctx, next)
	}
	return updated, nil
}
