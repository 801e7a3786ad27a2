// Package redis provides helpers for connecting to Redis and a Redis-backed
// session storage.
//
// Connect retries the initial ping according to Config, Healthcheck builds a
// probe for readiness endpoints, and SessionStorage implements
// session.Storage by keeping each session's data as a JSON document under
// "<prefix><sid>".
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	mgr, err := session.New(
//	    session.WithSecret(secret),
//	    session.WithStorage(redis.NewSessionStorageFromConfig(client, cfg)),
//	)
//
// # Errors
//
// Sentinel errors such as ErrRedisNotReady wrap the underlying go-redis
// errors using errors.Join and can be matched with errors.Is.
package redis
