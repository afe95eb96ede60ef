// Package fixtures builds synthetic offset-log fixtures from a small YAML
// scenario description, for tests that need a realistic multi-thousand
// message feed without committing a binary log file to the repository.
//
// A scenario names one or more feeds, each either an explicit list of
// messages or a generated run of Count sequential messages; Build
// expands that into order-preserving JSON payload bytes ready to append to
// an offsetlog.OffsetLog, alongside a manifest recording which key and
// sequence each generated entry got (since generated keys are random, a
// caller needs the manifest to look one back up).
package fixtures
