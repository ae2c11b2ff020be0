// Package storage provides the collaborator connectors exposed to blocks
// through the execution context: a prefixed Redis store with transactional
// pipelines, and a blob-backed file store that supports S3, GCS, Azure Blob
// Storage, local directories, and in-memory buckets
package storage
