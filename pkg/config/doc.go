// Package config provides configuration types and loading for userd.
//
// Configuration is read from a YAML file (userd.yaml by default) with
// environment variable substitution in ${VAR} and ${VAR:-default} form:
//
//	port: 4380
//	mode: dto
//	logging:
//	  level: ${USERD_LOG_LEVEL:-info}
//	  format: text
//	seed:
//	  - users:
//	      - name: Alice
//	        email: alice@example.com
//	  - file: seeds/team.yaml
//	  - files: seeds/*.yaml
//
// The mode field selects the behavioral profile of the API. "dto" (the
// default) validates request bodies, merges partial updates, and assigns
// ids from a monotonic counter. "basic" skips validation, replaces
// records wholesale on update, and derives ids from the current record
// count, which can reuse ids after deletions.
//
// Seed entries list users loaded into the store at startup, either
// inline, from a single file, or from a glob pattern (** is supported
// for recursive matching).
package config
