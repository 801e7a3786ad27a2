// Package config loads typed configuration from environment variables.
//
// It combines github.com/joho/godotenv for .env files with
// github.com/caarlos0/env/v11 for struct parsing. Each configuration type is
// parsed once and cached for the lifetime of the process, so packages can
// call Load for their own Config struct without coordinating.
//
// # Usage
//
//	var cfg session.Config
//	config.MustLoad(&cfg)
//
//	mgr, err := session.NewFromConfig(cfg)
//
// Extra .env files can be layered before the first Load:
//
//	if err := config.LoadEnv(".env", ".env.local"); err != nil {
//	    return err
//	}
//
// # Testing
//
// ResetCache and Reload let tests change the environment with t.Setenv and
// parse it again.
package config
