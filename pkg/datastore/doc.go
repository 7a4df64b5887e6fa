// Package datastore implements the data_store_provider extension point
// (§4.1): MemoryDataStore (test), SQLiteDataStore (development),
// PostgresDataStore + S3BlobStore (production).
package datastore
