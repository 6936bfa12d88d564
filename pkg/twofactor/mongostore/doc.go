// Package mongostore implements twofactor.Storage on MongoDB for deployments
// that keep account data in a document store.
//
// Three collections back the contract: twofactor_credentials (one document
// per account, unique on account_id), twofactor_backup_code_usages (unique on
// credential_id + code_hash, which is what makes backup codes single-use) and
// twofactor_attempts (append-only, partially indexed over failures for the
// throttle query).
//
// # Usage
//
//	var cfg mongostore.Config
//	if err := env.Parse(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	db, err := mongostore.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	store := mongostore.New(db)
//	if err := store.EnsureIndexes(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	svc := twofactor.NewService(store, cipher)
//
// EnsureIndexes must run before the store serves writes: without the unique
// usage index, concurrent backup code consumption is not collapsed to a
// single winner.
package mongostore
