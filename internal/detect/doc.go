// Package detect classifies log records against a set of error patterns.
//
// Each pattern carries a per-session cooldown so a crash loop emitting the
// same error hundreds of times per minute produces one hit per cooldown
// window instead of a notification storm.
package detect
