// Package envfile reads dotenv-style configuration files and merges their
// key/value pairs into the process environment. Existing environment
// variables win over file values unless an override is requested, so the
// file acts as a source of defaults for local development while real
// environments (containers, CI) keep full control. Values can also be read
// without touching the environment at all.
package envfile
