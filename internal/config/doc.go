// Package config loads, normalizes, and validates autocut's TOML configuration.
//
// Values come from three layers applied in order: built-in defaults, the TOML
// file, then AUTOCUT_* (and AWS_*) environment overrides. After loading, paths
// are expanded, sample and pattern names are case-folded, and the result is
// validated both field by field and across sections: every transition pattern
// must name configured samples and the default cut pattern must fit the
// default transition pattern.
package config
