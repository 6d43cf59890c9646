package automation

import "codeberg.org/mutker/prxgyz/internal/errors"

const (
	// Configuration Errors
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInvalidDBPath = errors.ErrorCode("automation_invalid_db_path")

	// Schema Errors
	ErrSchemaInitFailed       = errors.ErrorCode("automation_schema_init_failed")
	ErrSchemaValidationFailed = errors.ErrorCode("automation_schema_validation_failed")
	ErrSchemaMigrationFailed  = errors.ErrorCode("automation_schema_migration_failed")
	ErrTransactionFailed      = errors.ErrorCode("automation_transaction_failed")

	// Storage Errors
	ErrStorageAccess = errors.ErrorCode("automation_storage_access_failed")
	ErrStorageInit   = errors.ErrInitFailed
	ErrStorageClose  = errors.ErrShutdownFailed

	// Recording Errors
	ErrRecordFailed = errors.ErrorCode("automation_record_failed")
	ErrInvalidLane  = errors.ErrorCode("automation_invalid_lane")

	// Operation Errors
	ErrOperationTimeout = errors.ErrTimeout
)
