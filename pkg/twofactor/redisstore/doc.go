// Package redisstore implements twofactor.AttemptStore on Redis, for
// deployments that keep the verification throttle out of the primary
// database.
//
// Each account gets one sorted set of failed attempts scored by attempt
// time. Recording trims entries older than the retention period and refreshes
// the key TTL, so abandoned accounts cost nothing; counting is a single
// ZCOUNT over the throttle window. Successful attempts are not stored here,
// the durable audit trail belongs to the credential storage.
//
// # Usage
//
//	var cfg redisstore.Config
//	if err := env.Parse(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	client, err := redisstore.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	attempts := redisstore.New(client, redisstore.WithRetention(cfg.AttemptRetention))
//	svc := twofactor.NewService(store, cipher,
//		twofactor.WithAttemptStore(attempts),
//	)
//
// The retention period must be at least as long as the service's throttle
// window, otherwise failures expire before the throttle stops counting them.
package redisstore
