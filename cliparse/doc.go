// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are layered, later ones winning:

	defaults → YAML file (-c / RETRO_CONFIG) → environment → CLI flags

Only flags actually given on the command line override the layers below.

# CLI Flags

	-p, --port            Server port (default 3100)
	-c, --config          YAML config file
	-s, --store           memory, file, sqlite, postgres, redis, s3 (default file)
	-f, --snapshot-file   Snapshot file path (default rooms.json)
	-d, --database-url    Database URL for sqlite/postgres
	--redis-url           Redis URL
	--redis-key           Redis key (default retroboard:rooms)
	--s3-bucket, --s3-key, --s3-endpoint, --s3-region,
	--s3-access-key, --s3-secret-key, --s3-path-style, --s3-disable-checksum
	--static-dir          Directory served at / (default public)
	--max-votes           Votes per identity per room (default 3)
	--columns             Board columns (default good,bad,action)
	--log-level           debug, info, warn, error
	--log-format          text or json
	--allowed-origins     Websocket origin allow-list

# Environment Variables

	PORT, RETRO_CONFIG, SNAPSHOT_STORE, SNAPSHOT_FILE, DATABASE_URL,
	REDIS_URL, REDIS_KEY, S3_BUCKET, S3_KEY, S3_ENDPOINT, S3_REGION,
	S3_ACCESS_KEY, S3_SECRET_KEY, S3_PATH_STYLE, S3_DISABLE_CHECKSUM,
	STATIC_DIR, MAX_VOTES, BOARD_COLUMNS, LOG_LEVEL, LOG_FORMAT,
	ALLOWED_ORIGINS

List values in the environment are comma separated.

# YAML File

Keys use snake_case and mirror the Config fields:

	port: 3100
	store: s3
	s3:
	  bucket: retros
	  path_style: true
	columns: [good, bad, action]

# Validation

ParseFlags returns an error when the server could not start with the result:

  - the chosen store is missing its URL, path or bucket
  - max votes is below 1
  - columns are empty or repeated
  - log level or format is unknown
*/
package cliparse
