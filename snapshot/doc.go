// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package snapshot stores the serialized room registry.

Every backend implements Store: Load returns the last document (or
ErrNotFound), Save overwrites it wholesale. Nothing is appended, so a
crash in the middle of a write can leave a truncated document behind.

# Backends

  - FileStore: one JSON file on local disk (the default, rooms.json)
  - SQLStore: one row in room_snapshot, sqlite or postgres via package db
  - RedisStore: one string key (default retroboard:rooms)
  - S3Store: one object (default key rooms.json), MinIO compatible
  - MemoryStore: in-process, for tests and throwaway servers
*/
package snapshot
