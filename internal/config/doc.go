// Package config holds crawl configuration: documented defaults, the
// flat Config struct populated from CLI flags, and the optional
// .sitelens YAML file with per-site overrides.
//
// Configuration flows through the application by dependency injection;
// there is no global state. Validation happens once after flag parsing,
// before any crawling begins, and returns sentinel errors usable with
// errors.Is.
package config
