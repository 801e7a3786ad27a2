package session

import "context"

// Storage keeps session data server side, keyed by session id.
// When a Manager has a Storage, cookies carry only sid, iat and exp.
type Storage interface {
	// Get returns the data stored for sid, or (nil, nil) when there is none
	Get(ctx context.Context, sid string) (Data, error)

	// Set stores data for sid, replacing any previous value
	Set(ctx context.Context, sid string, data Data) error

	// Delete removes sid. Deleting a missing sid is not an error
	Delete(ctx context.Context, sid string) error
}

// Scheduler runs storage writes on behalf of Persist. Implementations may
// run fn in the background, but must have accepted it by the time Go returns.
// Without a Scheduler, Persist runs writes inline and returns their errors.
type Scheduler interface {
	Go(ctx context.Context, fn func(context.Context) error)
}
