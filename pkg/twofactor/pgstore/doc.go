// Package pgstore implements twofactor.Storage on PostgreSQL using the
// pgx/v5 driver, with schema migrations embedded in the package and applied
// via goose.
//
// The schema keeps three tables: twofactor_credentials (one row per account,
// unique on account_id), twofactor_backup_code_usages (append-only usage
// trail, primary key on credential_id + code_hash, cascade-deleted with the
// credential) and twofactor_attempts (append-only verification trail with a
// partial index over failures for the throttle query).
//
// Concurrency guarantees lean on the database rather than application locks:
// replacing a credential is a delete+insert transaction, and consuming a
// backup code is a single INSERT ... SELECT whose unique violation signals a
// replay.
//
// # Usage
//
//	var cfg pgstore.Config
//	if err := env.Parse(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	pool, err := pgstore.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pgstore.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		log.Fatal(err)
//	}
//
//	store := pgstore.New(pool)
//	svc := twofactor.NewService(store, cipher)
//
// The migration runner in cmd/ applies the schema standalone, for deploy
// pipelines that migrate before rolling the service.
package pgstore
